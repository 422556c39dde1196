package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// The store API contract sends money amounts as JSON numbers, and the
// persisted cart uses the same shape.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CartLine is one product+size entry in the cart. The JSON shape is the
// persisted cart format and must stay stable across reloads.
type CartLine struct {
	ProductID int64           `json:"id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
}

// Key returns the composite identity of a line. Adding the same product and
// size again merges quantities instead of appending a duplicate line.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size}
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey identifies a cart line by (product, size).
type LineKey struct {
	ProductID int64
	Size      string
}

// SiteConfig holds the shipping and tax rates fetched from the store API.
// It is fetched once per checkout session and treated as immutable.
type SiteConfig struct {
	FlatShippingRate      decimal.Decimal `json:"flat_shipping_rate"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	TaxRatePercent        decimal.Decimal `json:"tax_rate_percentage"`
}

// CouponApplication is a server-validated discount. Discount is the absolute
// amount resolved by the validator; the client never recomputes it. The JSON
// shape is the persisted coupon format.
type CouponApplication struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message"`
}

// Contact holds the checkout contact details.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ShippingAddress holds the delivery address collected at checkout.
type ShippingAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	Apartment  string `json:"apartment,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// OrderItem is a normalized cart line submitted with a draft order.
type OrderItem struct {
	SKU       string          `json:"sku"`
	Size      string          `json:"variant_label"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// TotalsSnapshot is the computed totals sent with a draft order.
type TotalsSnapshot struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// DraftOrder is the order payload committed before payment. The remote
// service keeps it in an unpaid state until verification succeeds.
type DraftOrder struct {
	Contact        Contact         `json:"contact"`
	Shipping       ShippingAddress `json:"shipping"`
	Items          []OrderItem     `json:"items"`
	Totals         TotalsSnapshot  `json:"totals"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// PaymentSession is the single-use gateway handle issued per checkout
// attempt. Amount is in minor currency units.
type PaymentSession struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Key            string `json:"key"`
}

// PaymentResult carries the gateway callback fields. They are forwarded to
// the verification endpoint verbatim and are never treated as proof of
// payment on their own.
type PaymentResult struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

// Order is a placed order as returned by the order-history endpoints.
type Order struct {
	ID              string          `json:"id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     OrderStatus     `json:"order_status"`
	ShippingAddress string          `json:"shipping_address"`
	Phone           string          `json:"phone"`
	Items           []PlacedItem    `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PlacedItem is a line of a placed order.
type PlacedItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"variant_label"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Product is a storefront catalog entry.
type Product struct {
	ID       int64           `json:"id"`
	Slug     string          `json:"slug"`
	SKU      string          `json:"sku"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Sizes    []string        `json:"sizes"`
	IsNew    bool            `json:"is_new"`
}

// SavedAddress is a stored shipping address used for checkout prefill.
type SavedAddress struct {
	ID        int64           `json:"id"`
	Address   ShippingAddress `json:"address"`
	IsDefault bool            `json:"is_default"`
}
