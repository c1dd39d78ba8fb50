package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProjectCreated EventType = "project_created"
	EventProjectUpdated EventType = "project_updated"
	EventProjectDeleted EventType = "project_deleted"
	EventAdminLoggedIn  EventType = "admin_logged_in"
	EventSessionExpired EventType = "session_expired"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProjectPayload describes the project a lifecycle event refers to.
type ProjectPayload struct {
	ProjectID string   `json:"project_id"`
	Title     string   `json:"title"`
	Version   string   `json:"version,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// LoginPayload describes an issued admin session.
type LoginPayload struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
