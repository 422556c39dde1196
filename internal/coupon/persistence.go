package coupon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vinsara/storefront/internal/domain"
)

// Persistence stores the applied coupon so a restart reconstructs it; the
// cart and bearer token survive restarts the same way. Saving nil clears the
// stored coupon.
type Persistence interface {
	Load() (*domain.CouponApplication, error)
	Save(applied *domain.CouponApplication) error
}

// FileStore persists the applied coupon as a JSON object in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed persistence adapter.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*domain.CouponApplication, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read coupon file: %w", err)
	}

	var applied domain.CouponApplication
	if err := json.Unmarshal(data, &applied); err != nil {
		return nil, fmt.Errorf("failed to parse coupon file: %w", err)
	}
	return &applied, nil
}

func (s *FileStore) Save(applied *domain.CouponApplication) error {
	if applied == nil {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove coupon file: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(applied)
	if err != nil {
		return fmt.Errorf("failed to marshal coupon: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create coupon directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write coupon file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory persistence adapter used in tests.
type MemoryStore struct {
	applied *domain.CouponApplication
}

// NewMemoryStore creates an empty in-memory adapter.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*domain.CouponApplication, error) {
	if s.applied == nil {
		return nil, nil
	}
	c := *s.applied
	return &c, nil
}

func (s *MemoryStore) Save(applied *domain.CouponApplication) error {
	if applied == nil {
		s.applied = nil
		return nil
	}
	c := *applied
	s.applied = &c
	return nil
}
