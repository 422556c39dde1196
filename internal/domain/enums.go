package domain

// CheckoutState represents the state of a single checkout attempt
type CheckoutState string

const (
	CheckoutIdle            CheckoutState = "IDLE"
	CheckoutFormIncomplete  CheckoutState = "FORM_INCOMPLETE"
	CheckoutOrderCreating   CheckoutState = "ORDER_CREATING"
	CheckoutGatewayStarting CheckoutState = "GATEWAY_STARTING"
	CheckoutAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
	CheckoutVerifying       CheckoutState = "VERIFYING"
	CheckoutSucceeded       CheckoutState = "SUCCEEDED"
	CheckoutFailed          CheckoutState = "FAILED"
)

// IsValid checks if the checkout state is valid
func (s CheckoutState) IsValid() bool {
	switch s {
	case CheckoutIdle,
		CheckoutFormIncomplete,
		CheckoutOrderCreating,
		CheckoutGatewayStarting,
		CheckoutAwaitingPayment,
		CheckoutVerifying,
		CheckoutSucceeded,
		CheckoutFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the attempt has finished.
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutSucceeded || s == CheckoutFailed
}

// CanTransitionTo checks if a state transition is valid. Any non-terminal
// state may fail; the happy path is strictly sequential.
func (s CheckoutState) CanTransitionTo(newState CheckoutState) bool {
	if newState == CheckoutFailed {
		return !s.IsTerminal()
	}
	switch s {
	case CheckoutIdle:
		return newState == CheckoutFormIncomplete
	case CheckoutFormIncomplete:
		return newState == CheckoutOrderCreating
	case CheckoutOrderCreating:
		return newState == CheckoutGatewayStarting
	case CheckoutGatewayStarting:
		return newState == CheckoutAwaitingPayment
	case CheckoutAwaitingPayment:
		return newState == CheckoutVerifying
	case CheckoutVerifying:
		return newState == CheckoutSucceeded
	case CheckoutSucceeded, CheckoutFailed:
		return newState == CheckoutIdle
	default:
		return false
	}
}

// PaymentStatus is the server-side payment state of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// IsSettled reports whether polling can stop.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentPaid
}

// OrderStatus is the fulfilment state of a placed order.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}
