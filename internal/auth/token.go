package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// TokenStore keeps the opaque bearer token for authenticated API calls.
// The token is persisted to a file so a session survives restarts; the
// client clears it when the server answers 401.
type TokenStore struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	token string
}

// NewTokenStore creates a token store backed by the given file. A missing
// file simply means no session.
func NewTokenStore(path string, logger *zap.Logger) *TokenStore {
	s := &TokenStore{path: path, logger: logger}
	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	} else if !os.IsNotExist(err) {
		logger.Warn("Failed to read token file", zap.Error(err))
	}
	return s
}

// Token returns the stored bearer token, empty when no session is present.
func (s *TokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// HasSession reports whether a credential is present.
func (s *TokenStore) HasSession() bool {
	return s.Token() != ""
}

// Set stores a new token. Persistence failures are logged; the in-memory
// token stays authoritative for the session.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("Failed to create token directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		s.logger.Warn("Failed to persist token", zap.Error(err))
	}
}

// Clear drops the credential, used when the server reports the session
// invalid and on logout.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove token file", zap.Error(err))
	}
}
