package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vinsara/storefront/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the computed price breakdown for the current cart state.
type Quote struct {
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	IsFreeShipping bool
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	FinalTotal     decimal.Decimal
}

// Compute derives the full price breakdown. The order is fixed: shipping
// from the free-shipping threshold, discount applied verbatim, taxable
// amount clamped at zero, tax on the post-discount amount, then the total.
// Amounts stay unrounded; rounding happens only at display or minor-unit
// conversion.
func Compute(subtotal decimal.Decimal, cfg domain.SiteConfig, couponDiscount decimal.Decimal) Quote {
	isFree := subtotal.GreaterThanOrEqual(cfg.FreeShippingThreshold)

	shipping := cfg.FlatShippingRate
	if isFree {
		shipping = decimal.Zero
	}

	discount := couponDiscount
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	tax := taxable.Mul(cfg.TaxRatePercent).Div(oneHundred)

	return Quote{
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		IsFreeShipping: isFree,
		DiscountAmount: discount,
		TaxAmount:      tax,
		FinalTotal:     taxable.Add(tax).Add(shipping),
	}
}

// TotalMinorUnits converts the final total to minor currency units,
// rounding half up. This is the only place the total is rounded.
func (q Quote) TotalMinorUnits() int64 {
	return q.FinalTotal.Mul(oneHundred).Round(0).IntPart()
}

// Snapshot freezes the quote into the totals sent with a draft order.
func (q Quote) Snapshot() domain.TotalsSnapshot {
	return domain.TotalsSnapshot{
		Subtotal: q.Subtotal,
		Shipping: q.ShippingCost,
		Discount: q.DiscountAmount,
		Tax:      q.TaxAmount,
		Total:    q.FinalTotal,
	}
}
