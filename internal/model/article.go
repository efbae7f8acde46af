package model

import "time"

// PsychologyArticle is an entry of the informational articles section.
type PsychologyArticle struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	Author       string    `json:"author,omitempty"`
	SourceURL    string    `json:"source_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Tags         []string  `json:"tags"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ArticleCategoryCount is the number of articles in one category.
type ArticleCategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
