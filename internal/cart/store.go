package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
)

// Store is the single source of truth for the shopping cart. Lines are
// owned exclusively by the store; callers get snapshots. Every mutation
// persists the full line list, and a persistence failure is logged but
// never surfaced - the in-memory state stays authoritative for the session.
type Store struct {
	persistence Persistence
	logger      *zap.Logger

	mu    sync.Mutex
	lines []domain.CartLine
}

// NewStore creates a cart store and loads any previously persisted lines.
func NewStore(persistence Persistence, logger *zap.Logger) *Store {
	s := &Store{
		persistence: persistence,
		logger:      logger,
	}

	lines, err := persistence.Load()
	if err != nil {
		logger.Warn("Failed to load persisted cart, starting empty", zap.Error(err))
		return s
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		s.lines = append(s.lines, line)
	}
	return s
}

// AddItem merges the incoming line into an existing (product, size) line by
// summing quantities, or appends it. Quantities below one are ignored.
func (s *Store) AddItem(line domain.CartLine) {
	if line.Quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Key() == line.Key() {
			s.lines[i].Quantity += line.Quantity
			s.persist()
			return
		}
	}

	s.lines = append(s.lines, line)
	s.persist()
}

// UpdateQuantity sets a line's quantity exactly. Zero or negative removes
// the line. Unknown lines are a no-op.
func (s *Store) UpdateQuantity(productID int64, size string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.LineKey{ProductID: productID, Size: size}
	for i := range s.lines {
		if s.lines[i].Key() == key {
			if quantity <= 0 {
				s.lines = append(s.lines[:i], s.lines[i+1:]...)
			} else {
				s.lines[i].Quantity = quantity
			}
			s.persist()
			return
		}
	}
}

// RemoveItem deletes the matching line. Absent lines are a no-op, not an
// error.
func (s *Store) RemoveItem(productID int64, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.LineKey{ProductID: productID, Size: size}
	for i := range s.lines {
		if s.lines[i].Key() == key {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist()
			return
		}
	}
}

// Clear empties the cart, used after confirmed payment and on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist()
}

// Lines returns a snapshot copy of the cart lines.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count is the sum of line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Subtotal is the sum of unit price times quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := decimal.Zero
	for _, line := range s.lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	return subtotal
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// persist writes the current lines through the adapter. Callers hold mu.
func (s *Store) persist() {
	if err := s.persistence.Save(s.lines); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
	}
}
