package movies

// Actor appears in movies.
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is a title with its cast.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Actors      []Actor `json:"actors"`
}

// NewMovie is the input for creating a movie.
type NewMovie struct {
	Title       string
	Description string
	ActorIDs    []int64
}
