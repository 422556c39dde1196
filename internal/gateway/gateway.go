package gateway

import (
	"context"
	"errors"

	"github.com/vinsara/storefront/internal/domain"
)

// ErrDismissed is returned when the user abandons the payment without
// completing it. The checkout flow resets instead of staying stuck in a
// processing state.
var ErrDismissed = errors.New("payment dismissed by user")

// Prefill carries contact details shown in the gateway checkout.
type Prefill struct {
	Name  string
	Email string
	Phone string
}

// Gateway drives one payment attempt. Open suspends until the user
// completes or dismisses the payment, the context expires, or the gateway
// fails. The returned result is raw callback data - the caller must verify
// it server-side before treating the payment as real.
type Gateway interface {
	Open(ctx context.Context, session domain.PaymentSession, prefill Prefill) (*domain.PaymentResult, error)
}
