package client

import (
	"net/url"
	"strconv"
	"time"
)

// User is the API's identity payload.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectInput carries the writable project fields.
type ProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Version     string   `json:"version,omitempty"`
	Link        string   `json:"link,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Project is the API's project payload.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Link        string    `json:"link"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListQuery filters project listings.
type ListQuery struct {
	Search   string
	Tag      string
	Page     int
	PageSize int
}

func (q ListQuery) encode() string {
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Tag != "" {
		values.Set("tag", q.Tag)
	}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

type authData struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type loginData struct {
	User User     `json:"user"`
	Auth authData `json:"auth"`
}
