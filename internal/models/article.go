package models

import "time"

type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	CoverImageID *string   `json:"coverImageId"`
	Body         string    `json:"body"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CoverImage   *Image    `json:"coverImage"`
}

// ArticleUpdate holds the fields of a partial article update; nil means unchanged.
type ArticleUpdate struct {
	Title     *string
	Slug      *string
	Body      *string
	Published *bool
}

// Image is a standalone uploaded image (article covers and inline article images).
type Image struct {
	ID           string    `json:"id"`
	R2Key        string    `json:"r2Key"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
	URL          string    `json:"url,omitempty"`
}
