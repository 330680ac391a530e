package models

import "time"

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       string          `json:"price"` // numeric(10,2) rendered with two decimals
	Sizes       []int64         `json:"sizes"`
	IsActive    bool            `json:"isActive"`
	ArticleID   *string         `json:"articleId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Images      []*ProductImage `json:"images,omitempty"`
}

// ProductUpdate holds the fields of a partial product update; nil means unchanged.
type ProductUpdate struct {
	Title       *string
	Description *string
	Price       *string
	Sizes       []int64
	IsActive    *bool
}

type ProductImage struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	R2Key        string    `json:"r2Key"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	URL          string    `json:"url,omitempty"`
}
