package models

// Convention represents an uploaded convention document (usually a PDF)
type Convention struct {
	ID          string `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Year        string `json:"year" db:"year"`
	File        string `json:"file" db:"file"` // stored file name
	DownloadURL string `json:"downloadUrl,omitempty" db:"-"`
}

// ConventionForm holds the text fields of a convention upload.
// "name" is accepted as an alias for "title".
type ConventionForm struct {
	Title string `form:"title" validate:"required"`
	Year  string `form:"year" validate:"required"`
}
