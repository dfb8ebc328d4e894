package models

import "time"

// Article is a blog article as served by the content backend.
type Article struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Blocks    []Block   `json:"blocks"`
}

// ArticleEnvelope is the backend response shape for a single article.
type ArticleEnvelope struct {
	Article Article `json:"article"`
}
