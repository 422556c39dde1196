package coupon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
	pkgerrors "github.com/vinsara/storefront/pkg/errors"
)

type mockAPI struct {
	mu       sync.Mutex
	calls    int
	lastCode string
	result   *domain.CouponApplication
	err      error

	// When set, Apply blocks until released, to exercise the in-flight
	// guard.
	block   chan struct{}
	started chan struct{}
}

func (m *mockAPI) ValidateCoupon(_ context.Context, code string, _ decimal.Decimal) (*domain.CouponApplication, error) {
	m.mu.Lock()
	m.calls++
	m.lastCode = code
	m.mu.Unlock()

	if m.started != nil {
		close(m.started)
		m.started = nil
	}
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestApply_StoresServerDiscountVerbatim(t *testing.T) {
	api := &mockAPI{result: &domain.CouponApplication{
		Code:     "WELCOME10",
		Discount: decimal.RequireFromString("250.50"),
		Message:  "Coupon applied!",
	}}
	v := NewValidator(api, NewMemoryStore(), zap.NewNop())

	applied, err := v.Apply(context.Background(), "  welcome10 ", decimal.NewFromInt(1800))

	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", api.lastCode)
	assert.True(t, applied.Discount.Equal(decimal.RequireFromString("250.50")))
	assert.True(t, v.Discount().Equal(decimal.RequireFromString("250.50")))
}

func TestApply_EmptyCodeRejectedLocally(t *testing.T) {
	api := &mockAPI{}
	v := NewValidator(api, NewMemoryStore(), zap.NewNop())

	_, err := v.Apply(context.Background(), "   ", decimal.NewFromInt(1800))

	var verr *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, api.callCount())
}

func TestApply_EmptyCartRejectedLocally(t *testing.T) {
	api := &mockAPI{}
	v := NewValidator(api, NewMemoryStore(), zap.NewNop())

	_, err := v.Apply(context.Background(), "WELCOME10", decimal.Zero)

	require.Error(t, err)
	assert.Zero(t, api.callCount())
}

func TestApply_FailedAttemptKeepsExistingCoupon(t *testing.T) {
	api := &mockAPI{result: &domain.CouponApplication{
		Code:     "WELCOME10",
		Discount: decimal.NewFromInt(100),
	}}
	v := NewValidator(api, NewMemoryStore(), zap.NewNop())

	_, err := v.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
	require.NoError(t, err)

	// Re-validating the same code can fail without clearing it.
	api.err = &pkgerrors.ErrCouponRejected{Code: "WELCOME10", Reason: "expired"}
	_, err = v.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
	require.Error(t, err)

	require.NotNil(t, v.Applied())
	assert.True(t, v.Discount().Equal(decimal.NewFromInt(100)))
}

func TestApply_SecondCodeRequiresExplicitRemoval(t *testing.T) {
	api := &mockAPI{result: &domain.CouponApplication{
		Code:     "WELCOME10",
		Discount: decimal.NewFromInt(100),
	}}
	v := NewValidator(api, NewMemoryStore(), zap.NewNop())

	_, err := v.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
	require.NoError(t, err)

	_, err = v.Apply(context.Background(), "SUMMER20", decimal.NewFromInt(1800))
	var rejected *pkgerrors.ErrCouponRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 1, api.callCount())

	v.Remove()
	assert.True(t, v.Discount().IsZero())

	api.result = &domain.CouponApplication{Code: "SUMMER20", Discount: decimal.NewFromInt(200)}
	_, err = v.Apply(context.Background(), "SUMMER20", decimal.NewFromInt(1800))
	require.NoError(t, err)
	assert.True(t, v.Discount().Equal(decimal.NewFromInt(200)))
}

func TestAppliedCoupon_SurvivesRestart(t *testing.T) {
	api := &mockAPI{result: &domain.CouponApplication{
		Code:     "WELCOME10",
		Discount: decimal.NewFromInt(200),
	}}
	persistence := NewMemoryStore()

	first := NewValidator(api, persistence, zap.NewNop())
	_, err := first.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
	require.NoError(t, err)

	// A fresh process reconstructs the applied coupon without revalidating.
	second := NewValidator(api, persistence, zap.NewNop())
	require.NotNil(t, second.Applied())
	assert.Equal(t, "WELCOME10", second.Applied().Code)
	assert.True(t, second.Discount().Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, api.callCount())
}

func TestRemove_ClearsPersistedCoupon(t *testing.T) {
	api := &mockAPI{result: &domain.CouponApplication{
		Code:     "WELCOME10",
		Discount: decimal.NewFromInt(200),
	}}
	persistence := NewMemoryStore()

	first := NewValidator(api, persistence, zap.NewNop())
	_, err := first.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
	require.NoError(t, err)
	first.Remove()

	second := NewValidator(api, persistence, zap.NewNop())
	assert.Nil(t, second.Applied())
	assert.True(t, second.Discount().IsZero())
}

func TestFileStore_RoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coupon.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(&domain.CouponApplication{
		Code:     "WELCOME10",
		Discount: decimal.RequireFromString("250.50"),
		Message:  "Coupon applied!",
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "WELCOME10", loaded.Code)
	assert.True(t, loaded.Discount.Equal(decimal.RequireFromString("250.50")))

	require.NoError(t, store.Save(nil))
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_MissingFileMeansNoCoupon(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestApply_OnlyOneValidationInFlight(t *testing.T) {
	api := &mockAPI{
		result:  &domain.CouponApplication{Code: "WELCOME10", Discount: decimal.NewFromInt(100)},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	v := NewValidator(api, NewMemoryStore(), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := v.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
		done <- err
	}()

	<-api.started

	// A second attempt while the first is outstanding is refused without a
	// network call.
	_, err := v.Apply(context.Background(), "WELCOME10", decimal.NewFromInt(1800))
	var verr *pkgerrors.ErrValidation
	require.ErrorAs(t, err, &verr)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.callCount())
}
