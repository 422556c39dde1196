package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
)

func line(id int64, size string, price int64, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID: id,
		SKU:       "SKU",
		Title:     "Shirt",
		UnitPrice: decimal.NewFromInt(price),
		Size:      size,
		Quantity:  qty,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemoryStore(), zap.NewNop())
}

func TestAddItem_MergesSameProductAndSize(t *testing.T) {
	store := newTestStore(t)

	store.AddItem(line(1, "M", 500, 1))
	store.AddItem(line(1, "M", 500, 2))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 3, store.Count())
}

func TestAddItem_DifferentSizeIsSeparateLine(t *testing.T) {
	store := newTestStore(t)

	store.AddItem(line(1, "M", 500, 1))
	store.AddItem(line(1, "L", 500, 1))

	assert.Len(t, store.Lines(), 2)
}

func TestUpdateQuantity_SetsExactly(t *testing.T) {
	store := newTestStore(t)
	store.AddItem(line(1, "M", 500, 3))

	store.UpdateQuantity(1, "M", 2)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	store := newTestStore(t)
	store.AddItem(line(1, "M", 500, 3))

	store.UpdateQuantity(1, "M", 0)

	assert.Empty(t, store.Lines())
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	store := newTestStore(t)
	store.AddItem(line(1, "M", 500, 3))

	store.UpdateQuantity(1, "M", -1)

	assert.Empty(t, store.Lines())
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	store := newTestStore(t)
	store.AddItem(line(1, "M", 500, 1))

	store.RemoveItem(2, "M")
	store.RemoveItem(1, "L")

	assert.Len(t, store.Lines(), 1)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	store.AddItem(line(1, "M", 500, 1))
	store.AddItem(line(2, "L", 700, 2))

	store.Clear()

	assert.Empty(t, store.Lines())
	assert.Equal(t, 0, store.Count())
	assert.True(t, store.Subtotal().IsZero())
}

func TestDerivedTotals_TrackMutationSequence(t *testing.T) {
	store := newTestStore(t)

	store.AddItem(line(1, "M", 500, 2))  // 1000
	store.AddItem(line(2, "L", 700, 1))  // 700
	store.AddItem(line(1, "M", 500, 1))  // merge -> 1500
	store.UpdateQuantity(2, "L", 3)      // 2100
	store.RemoveItem(1, "M")             // drop 1500
	store.AddItem(line(3, "S", 250, 4))  // 1000
	store.UpdateQuantity(3, "S", 0)      // drop 1000

	assert.Equal(t, 3, store.Count())
	assert.True(t, store.Subtotal().Equal(decimal.NewFromInt(2100)))
	assert.GreaterOrEqual(t, store.Count(), 0)
	assert.False(t, store.Subtotal().IsNegative())
}

func TestNewStore_ReloadsPersistedState(t *testing.T) {
	persistence := NewMemoryStore()
	first := NewStore(persistence, zap.NewNop())
	first.AddItem(line(1, "M", 500, 2))
	first.AddItem(line(2, "L", 700, 1))

	second := NewStore(persistence, zap.NewNop())

	assert.Equal(t, first.Lines(), second.Lines())
	assert.Equal(t, 3, second.Count())
	assert.True(t, second.Subtotal().Equal(decimal.NewFromInt(1700)))
}

func TestNewStore_DropsInvalidPersistedQuantities(t *testing.T) {
	persistence := NewMemoryStore()
	require.NoError(t, persistence.Save([]domain.CartLine{
		line(1, "M", 500, 2),
		line(2, "L", 700, 0),
	}))

	store := NewStore(persistence, zap.NewNop())

	assert.Len(t, store.Lines(), 1)
}

type failingPersistence struct{}

func (failingPersistence) Load() ([]domain.CartLine, error) { return nil, nil }
func (failingPersistence) Save([]domain.CartLine) error {
	return errors.New("quota exceeded")
}

func TestPersistenceFailure_IsNonFatal(t *testing.T) {
	store := NewStore(failingPersistence{}, zap.NewNop())

	// Mutations must not panic or surface the persistence error; the
	// in-memory state stays authoritative.
	store.AddItem(line(1, "M", 500, 2))
	store.UpdateQuantity(1, "M", 5)

	assert.Equal(t, 5, store.Count())
}
