package models

import (
	"time"
)

// News represents a news article with its cover image
type News struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Author      string    `json:"author" db:"author"`
	Image       string    `json:"image" db:"image"` // stored file name
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ImageURL    string    `json:"imageUrl,omitempty" db:"-"`
}

// NewsForm holds the text fields of a news upload
type NewsForm struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description" validate:"required"`
	Author      string `form:"author" validate:"required"`
}
