package coupon

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
	"github.com/vinsara/storefront/pkg/errors"
)

// API is the slice of the store client the validator needs.
type API interface {
	ValidateCoupon(ctx context.Context, code string, orderTotal decimal.Decimal) (*domain.CouponApplication, error)
}

// Validator applies at most one coupon at a time. Validation goes to the
// remote API; a failed attempt leaves any previously applied coupon intact.
// The applied coupon is persisted so it survives restarts alongside the cart.
type Validator struct {
	api         API
	persistence Persistence
	logger      *zap.Logger

	mu       sync.Mutex
	inFlight bool
	applied  *domain.CouponApplication
}

// NewValidator creates a coupon validator and loads any persisted coupon.
func NewValidator(api API, persistence Persistence, logger *zap.Logger) *Validator {
	v := &Validator{
		api:         api,
		persistence: persistence,
		logger:      logger,
	}

	applied, err := persistence.Load()
	if err != nil {
		logger.Warn("Failed to load persisted coupon, starting without one", zap.Error(err))
		return v
	}
	v.applied = applied
	return v
}

// Apply validates a code against the current subtotal and stores the
// server-resolved discount verbatim. Only one validation may be in flight;
// a second code while one is applied must be removed explicitly first.
func (v *Validator) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*domain.CouponApplication, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, &errors.ErrValidation{Field: "code", Reason: "enter a discount code"}
	}
	if !subtotal.IsPositive() {
		return nil, &errors.ErrValidation{Field: "subtotal", Reason: "cart is empty"}
	}

	v.mu.Lock()
	if v.inFlight {
		v.mu.Unlock()
		return nil, &errors.ErrValidation{Reason: "a coupon check is already in progress"}
	}
	if v.applied != nil && v.applied.Code != normalized {
		v.mu.Unlock()
		return nil, &errors.ErrCouponRejected{
			Code:   normalized,
			Reason: "remove the current code before applying another",
		}
	}
	v.inFlight = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.inFlight = false
		v.mu.Unlock()
	}()

	applied, err := v.api.ValidateCoupon(ctx, normalized, subtotal)
	if err != nil {
		// A failed attempt never clears an existing valid coupon.
		v.logger.Info("Coupon validation failed",
			zap.String("code", normalized),
			zap.Error(err),
		)
		return nil, err
	}

	v.mu.Lock()
	v.applied = applied
	v.mu.Unlock()
	v.persist(applied)

	v.logger.Info("Coupon applied",
		zap.String("code", applied.Code),
		zap.String("discount", applied.Discount.String()),
	)
	return applied, nil
}

// Remove clears the applied coupon, resetting the discount to zero. The
// coupon is also removed whenever the cart is cleared, including after a
// confirmed payment and on logout.
func (v *Validator) Remove() {
	v.mu.Lock()
	v.applied = nil
	v.mu.Unlock()
	v.persist(nil)
}

// persist writes the applied coupon through the adapter. Failures are logged
// and never surfaced; the in-memory state stays authoritative.
func (v *Validator) persist(applied *domain.CouponApplication) {
	if err := v.persistence.Save(applied); err != nil {
		v.logger.Warn("Failed to persist coupon", zap.Error(err))
	}
}

// Applied returns the active coupon, nil when none.
func (v *Validator) Applied() *domain.CouponApplication {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.applied == nil {
		return nil
	}
	c := *v.applied
	return &c
}

// Discount returns the active absolute discount, zero when no coupon is
// applied.
func (v *Validator) Discount() decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.applied == nil {
		return decimal.Zero
	}
	return v.applied.Discount
}
