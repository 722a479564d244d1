package model

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is the post entity. published = false means draft, visible
// only to the author and admins.
type BlogPost struct {
	ID       uuid.UUID `json:"id" db:"id"`
	AuthorID uuid.UUID `json:"author_id" db:"author_id"`

	// AuthorName is joined in from profiles on reads; it is not a
	// column of blog_posts and stays empty on a freshly created entity.
	AuthorName string `json:"author_name" db:"author_name"`

	Title         string    `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"`
	Summary       *string   `json:"summary,omitempty" db:"summary"`
	SeoKeywords   []string  `json:"seo_keywords" db:"seo_keywords"`
	CoverImageURL *string   `json:"cover_image_url,omitempty" db:"cover_image_url"`
	VideoLinks    []string  `json:"video_links" db:"video_links"`
	Published     bool      `json:"published" db:"published"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
