package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kbayram/clientkit/httpclient"
)

// TokenStore persists the two opaque bearer-token strings. Tokens are never
// inspected for shape by the store; they are credentials, not data.
type TokenStore interface {
	// Access returns the access token, if one is held.
	Access() (string, bool)
	// Refresh returns the refresh token, if one is held.
	Refresh() (string, bool)
	// Set stores both tokens, replacing any prior pair.
	Set(access, refresh string)
	// Clear drops both tokens.
	Clear()
}

// A token store doubles as the transport's credential source.
var (
	_ httpclient.TokenSource = (TokenStore)(nil)
	_ TokenStore             = (*MemoryStore)(nil)
	_ TokenStore             = (*FileStore)(nil)
)

// MemoryStore holds tokens for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Access returns the access token, if one is held.
func (s *MemoryStore) Access() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.access != ""
}

// Refresh returns the refresh token, if one is held.
func (s *MemoryStore) Refresh() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh, s.refresh != ""
}

// Set stores both tokens.
func (s *MemoryStore) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

// Clear drops both tokens.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}

// FileStore persists tokens as a mode-0600 JSON file so a session survives
// process restarts on the same machine. Read/write failures degrade to an
// empty store; credentials are never worth crashing over.
type FileStore struct {
	mu      sync.Mutex
	path    string
	access  string
	refresh string
}

type tokenFile struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewFileStore creates a token store backed by the given file path,
// loading any previously persisted pair.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}
	if data, err := os.ReadFile(path); err == nil {
		var tf tokenFile
		if json.Unmarshal(data, &tf) == nil {
			s.access = tf.Access
			s.refresh = tf.Refresh
		}
	}
	return s
}

// Access returns the access token, if one is held.
func (s *FileStore) Access() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.access != ""
}

// Refresh returns the refresh token, if one is held.
func (s *FileStore) Refresh() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh, s.refresh != ""
}

// Set stores both tokens and persists them.
func (s *FileStore) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh

	data, err := json.Marshal(tokenFile{Access: access, Refresh: refresh})
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o700)
	_ = os.WriteFile(s.path, data, 0o600)
}

// Clear drops both tokens and removes the backing file.
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	_ = os.Remove(s.path)
}
