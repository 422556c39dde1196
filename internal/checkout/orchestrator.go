package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/cart"
	"github.com/vinsara/storefront/internal/domain"
	"github.com/vinsara/storefront/internal/gateway"
	"github.com/vinsara/storefront/internal/pricing"
	pkgerrors "github.com/vinsara/storefront/pkg/errors"
)

// StoreAPI is the slice of the store client the orchestrator drives.
type StoreAPI interface {
	FetchSiteConfig(ctx context.Context) (*domain.SiteConfig, error)
	CreateOrder(ctx context.Context, draft domain.DraftOrder) (*domain.PaymentSession, error)
	VerifyPayment(ctx context.Context, result domain.PaymentResult) error
	OrderStatus(ctx context.Context, orderID string) (domain.PaymentStatus, error)
	SaveAddress(ctx context.Context, address domain.ShippingAddress) (*domain.SavedAddress, error)
}

// Session reports whether an authenticated session is present.
type Session interface {
	HasSession() bool
}

// CouponSource exposes the active discount for the totals snapshot. Remove
// destroys the applied coupon; a coupon never outlives the cart it was
// validated against.
type CouponSource interface {
	Applied() *domain.CouponApplication
	Discount() decimal.Decimal
	Remove()
}

// Form is the checkout form data collected from the user.
type Form struct {
	Contact     domain.Contact
	Shipping    domain.ShippingAddress
	SaveAddress bool
}

// Result is the outcome of a checkout attempt.
type Result struct {
	OrderID string
	State   domain.CheckoutState
	Message string
}

// Orchestrator runs one checkout attempt at a time: guards, order creation,
// gateway payment, server-side verification, then reconciliation. The
// gateway callback is never treated as proof of payment; only verification
// clears the cart.
type Orchestrator struct {
	cart    *cart.Store
	api     StoreAPI
	gateway gateway.Gateway
	coupons CouponSource
	session Session
	logger  *zap.Logger

	pollAttempts int
	pollDelay    time.Duration

	mu     sync.Mutex
	paying bool
	state  domain.CheckoutState

	background sync.WaitGroup
	pollCancel context.CancelFunc
}

// NewOrchestrator creates a new checkout orchestrator
func NewOrchestrator(
	cartStore *cart.Store,
	api StoreAPI,
	gw gateway.Gateway,
	coupons CouponSource,
	session Session,
	pollAttempts int,
	pollDelay time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cart:         cartStore,
		api:          api,
		gateway:      gw,
		coupons:      coupons,
		session:      session,
		pollAttempts: pollAttempts,
		pollDelay:    pollDelay,
		logger:       logger,
		state:        domain.CheckoutIdle,
	}
}

// State returns the current checkout state.
func (o *Orchestrator) State() domain.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Checkout runs a full checkout attempt. A second call while one is in
// flight is refused immediately. Every failure path resets the in-flight
// flag so the user can retry.
func (o *Orchestrator) Checkout(ctx context.Context, form Form) (*Result, error) {
	o.mu.Lock()
	if o.paying {
		o.mu.Unlock()
		return nil, &pkgerrors.ErrValidation{Reason: "a checkout is already in progress"}
	}
	o.paying = true
	o.state = domain.CheckoutIdle
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.paying = false
		o.mu.Unlock()
	}()

	result, err := o.run(ctx, form)
	if err != nil {
		o.setState(domain.CheckoutFailed)
		o.setState(domain.CheckoutIdle)
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, form Form) (*Result, error) {
	// Guards run before any network call.
	if err := o.advance(domain.CheckoutFormIncomplete); err != nil {
		return nil, err
	}
	if o.cart.IsEmpty() {
		return nil, &pkgerrors.ErrValidation{Field: "cart", Reason: "your cart is empty"}
	}
	if !o.session.HasSession() {
		return nil, &pkgerrors.ErrUnauthorized{Message: "sign in to place an order"}
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	if err := o.advance(domain.CheckoutOrderCreating); err != nil {
		return nil, err
	}
	session, err := o.createOrder(ctx, form)
	if err != nil {
		return nil, err
	}

	if err := o.advance(domain.CheckoutGatewayStarting); err != nil {
		return nil, err
	}
	if err := o.advance(domain.CheckoutAwaitingPayment); err != nil {
		return nil, err
	}

	prefill := gateway.Prefill{
		Name:  strings.TrimSpace(form.Shipping.FirstName + " " + form.Shipping.LastName),
		Email: form.Contact.Email,
		Phone: form.Contact.Phone,
	}
	payment, err := o.gateway.Open(ctx, *session, prefill)
	if err != nil {
		if errors.Is(err, gateway.ErrDismissed) {
			o.logger.Info("Payment dismissed by user",
				zap.String("order_id", session.OrderID),
			)
		} else {
			o.logger.Error("Payment gateway failed", zap.Error(err))
		}
		// No automatic order re-creation; the user re-triggers checkout.
		return nil, err
	}

	if err := o.advance(domain.CheckoutVerifying); err != nil {
		return nil, err
	}
	if err := o.api.VerifyPayment(ctx, *payment); err != nil {
		// The charge may still settle server-side via webhook. Surface a
		// pending message, keep the cart, re-enable the submit action.
		o.logger.Warn("Payment verification did not confirm",
			zap.String("order_id", session.OrderID),
			zap.Error(err),
		)
		return nil, &pkgerrors.ErrVerificationPending{OrderID: session.OrderID}
	}

	if err := o.advance(domain.CheckoutSucceeded); err != nil {
		return nil, err
	}
	o.reconcile(ctx, form, session.OrderID)

	return &Result{
		OrderID: session.OrderID,
		State:   domain.CheckoutSucceeded,
		Message: "order placed",
	}, nil
}

// createOrder computes the totals snapshot and commits the draft order.
func (o *Orchestrator) createOrder(ctx context.Context, form Form) (*domain.PaymentSession, error) {
	siteConfig, err := o.api.FetchSiteConfig(ctx)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(o.cart.Subtotal(), *siteConfig, o.coupons.Discount())

	lines := o.cart.Lines()
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			SKU:       line.SKU,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	draft := domain.DraftOrder{
		Contact:        form.Contact,
		Shipping:       form.Shipping,
		Items:          items,
		Totals:         quote.Snapshot(),
		IdempotencyKey: uuid.New().String(),
	}
	if applied := o.coupons.Applied(); applied != nil {
		draft.CouponCode = applied.Code
	}

	session, err := o.api.CreateOrder(ctx, draft)
	if err != nil {
		o.logger.Error("Failed to create order", zap.Error(err))
		return nil, err
	}

	o.logger.Info("Order created",
		zap.String("order_id", session.OrderID),
		zap.String("gateway_order_id", session.GatewayOrderID),
		zap.Int64("amount", session.Amount),
	)
	return session, nil
}

// reconcile runs the post-verification side effects: clear the cart and the
// consumed coupon, save the address best-effort, and start background status
// polling. None of these can fail the order.
func (o *Orchestrator) reconcile(ctx context.Context, form Form, orderID string) {
	o.cart.Clear()
	o.coupons.Remove()

	if form.SaveAddress {
		if _, err := o.api.SaveAddress(ctx, form.Shipping); err != nil {
			o.logger.Warn("Failed to save address", zap.Error(err))
		}
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.pollCancel = cancel
	o.mu.Unlock()

	o.background.Add(1)
	go func() {
		defer o.background.Done()
		status, err := PollOrderStatus(pollCtx, o.api, orderID, o.pollAttempts, o.pollDelay, o.logger)
		if err != nil {
			o.logger.Info("Order status polling stopped",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			return
		}
		o.logger.Info("Order status settled",
			zap.String("order_id", orderID),
			zap.String("payment_status", string(status)),
		)
	}()
}

// Close cancels background polling and waits for it to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	cancel := o.pollCancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.background.Wait()
}

// advance moves to the next state, enforcing the transition table.
func (o *Orchestrator) advance(to domain.CheckoutState) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.CanTransitionTo(to) {
		return &pkgerrors.ErrInvalidStateTransition{
			From: string(o.state),
			To:   string(to),
		}
	}
	o.state = to
	return nil
}

func (o *Orchestrator) setState(to domain.CheckoutState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.CanTransitionTo(to) {
		o.state = to
	}
}

func validateForm(form Form) error {
	required := []struct {
		field string
		value string
	}{
		{"email", form.Contact.Email},
		{"first name", form.Shipping.FirstName},
		{"address", form.Shipping.Address},
		{"city", form.Shipping.City},
		{"postal code", form.Shipping.PostalCode},
		{"phone", form.Contact.Phone},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &pkgerrors.ErrValidation{Field: r.field, Reason: "is required"}
		}
	}
	return nil
}
