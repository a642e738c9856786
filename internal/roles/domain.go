package roles

// Role represents an entry of the role catalog.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
