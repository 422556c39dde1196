package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
)

// StatusAPI is the slice of the store client the poller needs.
type StatusAPI interface {
	OrderStatus(ctx context.Context, orderID string) (domain.PaymentStatus, error)
}

// PollOrderStatus polls the order's payment status with a fixed delay until
// it settles, the attempt budget runs out, or the context is cancelled. It
// exists purely for eventual consistency of the displayed status - the
// success signal is server-side verification, never this poll.
func PollOrderStatus(
	ctx context.Context,
	api StatusAPI,
	orderID string,
	maxAttempts int,
	delay time.Duration,
	logger *zap.Logger,
) (domain.PaymentStatus, error) {
	status := domain.PaymentPending

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		current, err := api.OrderStatus(ctx, orderID)
		if err != nil {
			logger.Debug("Order status poll failed",
				zap.String("order_id", orderID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			status = current
			if status.IsSettled() {
				return status, nil
			}
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return status, ctx.Err()
		}
	}

	return status, nil
}
