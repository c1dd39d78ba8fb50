package session

import (
	"context"
	"encoding/json"
	"os"
	"sync"
)

// FileStore persists the credential as JSON in a single file, for processes
// that outlive the issuing login (CLI tooling, desktop clients).
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the given file path. The file is
// created on first Save with owner-only permissions.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the serialized record, replacing any previous content.
func (s *FileStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Read parses the stored record. A missing file or unparsable content is
// treated as no credential.
func (s *FileStore) Read(_ context.Context) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, nil
	}
	return &cred, nil
}

// Clear removes the file. Removing an absent file is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
