package comments

import "time"

// Comment is a reply to an article, owned by its author.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	ArticleID int64     `json:"articleId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	ArticleID int64
	UserID    int64
}
