package session

import (
	"context"
	"sync"
)

// Store persists at most one credential record. Save overwrites
// unconditionally, Read returns (nil, nil) when no record exists or the
// stored value cannot be parsed, and Clear is a no-op when nothing is stored.
type Store interface {
	Save(ctx context.Context, cred Credential) error
	Read(ctx context.Context) (*Credential, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	cred *Credential
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces any previously stored credential.
func (s *MemoryStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &cred
	return nil
}

// Read returns a copy of the stored credential, or nil when absent.
func (s *MemoryStore) Read(_ context.Context) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	cred := *s.cred
	return &cred, nil
}

// Clear drops the stored credential.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}
