package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vinsara/storefront/internal/domain"
)

// Persistence stores the full cart line list so a restart reconstructs
// identical state. The store is the sole writer.
type Persistence interface {
	Load() ([]domain.CartLine, error)
	Save(lines []domain.CartLine) error
}

// FileStore persists the cart as a JSON array in a single file. The array
// shape (id, sku, title, price, image, size, quantity) is the stable format.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed persistence adapter.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]domain.CartLine, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse cart file: %w", err)
	}
	return lines, nil
}

func (s *FileStore) Save(lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory persistence adapter used in tests and as a
// fallback when no durable backend is configured.
type MemoryStore struct {
	lines []domain.CartLine
}

// NewMemoryStore creates an empty in-memory adapter.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]domain.CartLine, error) {
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *MemoryStore) Save(lines []domain.CartLine) error {
	s.lines = make([]domain.CartLine, len(lines))
	copy(s.lines, lines)
	return nil
}
