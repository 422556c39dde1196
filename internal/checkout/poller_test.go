package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
)

type scriptedStatusAPI struct {
	mu     sync.Mutex
	calls  int
	script []func() (domain.PaymentStatus, error)
}

func (s *scriptedStatusAPI) OrderStatus(context.Context, string) (domain.PaymentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= len(s.script) {
		return s.script[s.calls-1]()
	}
	return domain.PaymentPending, nil
}

func (s *scriptedStatusAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func pending() (domain.PaymentStatus, error) { return domain.PaymentPending, nil }
func paid() (domain.PaymentStatus, error)    { return domain.PaymentPaid, nil }

func TestPollOrderStatus_StopsWhenSettled(t *testing.T) {
	api := &scriptedStatusAPI{script: []func() (domain.PaymentStatus, error){
		pending, pending, paid, pending,
	}}

	status, err := PollOrderStatus(context.Background(), api, "41", 12, time.Millisecond, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, status)
	assert.Equal(t, 3, api.callCount())
}

func TestPollOrderStatus_RespectsAttemptBudget(t *testing.T) {
	api := &scriptedStatusAPI{}

	status, err := PollOrderStatus(context.Background(), api, "41", 5, time.Millisecond, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, status)
	assert.Equal(t, 5, api.callCount())
}

func TestPollOrderStatus_TransientErrorsAreRetried(t *testing.T) {
	api := &scriptedStatusAPI{script: []func() (domain.PaymentStatus, error){
		func() (domain.PaymentStatus, error) { return "", errors.New("502 bad gateway") },
		paid,
	}}

	status, err := PollOrderStatus(context.Background(), api, "41", 12, time.Millisecond, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, status)
}

func TestPollOrderStatus_CancellationStopsEarly(t *testing.T) {
	api := &scriptedStatusAPI{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := PollOrderStatus(ctx, api, "41", 12, time.Minute, zap.NewNop())

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.PaymentPending, status)
	assert.Equal(t, 1, api.callCount())
}
