package dto

import "time"

// ProjectRequest payload for create and update.
type ProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
}

// ProjectResponse full project info.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Link        string    `json:"link"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
