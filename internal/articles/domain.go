package articles

import "time"

// Article is a post owned by the user that created it.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Changes is a partial update; nil fields are kept.
type Changes struct {
	Title   *string
	Content *string
}
