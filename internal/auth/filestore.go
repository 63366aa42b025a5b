// Package auth persists the signed-in user and token pair between runs.
// Secure-storage mechanics are platform concerns; the CLI keeps a plain JSON
// file behind the client.TokenStore interface.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/toolsnap/toolsnap/internal/models"
)

type FileStore struct {
	path string

	mu    sync.Mutex
	state fileState
}

type fileState struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

// NewFileStore loads credentials from path if it exists.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decoding credentials file: %w", err)
	}
	return s, nil
}

func (s *FileStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

func (s *FileStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RefreshToken
}

func (s *FileStore) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	return s.save()
}

func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fileState{}
	os.Remove(s.path)
}

// SetUser records the signed-in user alongside the tokens.
func (s *FileStore) SetUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &user
	return s.save()
}

// CurrentUser returns the persisted user, or nil when nobody is signed in.
func (s *FileStore) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}
	return nil
}
