package domain

import "time"

// Project is the aggregate for portfolio entries.
type Project struct {
	ID          string
	Title       string
	Description string
	Version     string
	Link        string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
