package errors

import "fmt"

// ErrValidation indicates a request was rejected before any network call.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ErrUnauthorized indicates the stored session is missing or invalid.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ErrNotFound indicates a resource does not exist on the remote API.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrCouponRejected carries the server-provided reason a code was refused.
type ErrCouponRejected struct {
	Code   string
	Reason string
}

func (e *ErrCouponRejected) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

// ErrInvalidStateTransition indicates an illegal checkout state change
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrGateway indicates a payment gateway failure. Retryable gateway errors
// reset the checkout so the user can trigger a fresh attempt.
type ErrGateway struct {
	Message   string
	Retryable bool
}

func (e *ErrGateway) Error() string {
	return e.Message
}

// ErrVerificationPending indicates server-side verification did not confirm
// the payment yet. The charge may still settle asynchronously, so this is
// surfaced as "pending confirmation" rather than a hard failure.
type ErrVerificationPending struct {
	OrderID string
}

func (e *ErrVerificationPending) Error() string {
	return fmt.Sprintf("payment for order %s is awaiting confirmation", e.OrderID)
}
