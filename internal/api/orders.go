package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vinsara/storefront/internal/domain"
)

// CreateOrder commits a draft order before payment. The service keeps the
// order in an unpaid state and returns the gateway session for this attempt.
func (c *Client) CreateOrder(ctx context.Context, draft domain.DraftOrder) (*domain.PaymentSession, error) {
	var session domain.PaymentSession
	if err := c.post(ctx, "/orders/checkout/", draft, &session); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &session, nil
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// VerifyPayment asks the server to confirm the gateway callback. Only a
// successful verification counts as payment; the callback alone never does.
func (c *Client) VerifyPayment(ctx context.Context, result domain.PaymentResult) error {
	var resp verifyResponse
	if err := c.post(ctx, "/payments/verify/", result, &resp); err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("payment verification failed: %s", resp.Error)
		}
		return fmt.Errorf("payment verification failed")
	}
	return nil
}

type orderStatusResponse struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// OrderStatus polls the eventual payment status of an order.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (domain.PaymentStatus, error) {
	var resp orderStatusResponse
	if err := c.get(ctx, "/orders/"+url.PathEscape(orderID)+"/status/", &resp); err != nil {
		return "", err
	}
	return resp.PaymentStatus, nil
}

// Orders returns the order history for the authenticated user.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/orders/", &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// Addresses lists the saved shipping addresses for checkout prefill.
func (c *Client) Addresses(ctx context.Context) ([]domain.SavedAddress, error) {
	var addresses []domain.SavedAddress
	if err := c.get(ctx, "/addresses/", &addresses); err != nil {
		return nil, fmt.Errorf("failed to fetch addresses: %w", err)
	}
	return addresses, nil
}

// SaveAddress stores a shipping address for future prefill.
func (c *Client) SaveAddress(ctx context.Context, address domain.ShippingAddress) (*domain.SavedAddress, error) {
	var saved domain.SavedAddress
	if err := c.post(ctx, "/addresses/", address, &saved); err != nil {
		return nil, fmt.Errorf("failed to save address: %w", err)
	}
	return &saved, nil
}

// SignupRequest holds the fields the account-creation endpoint accepts.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
}

// Signup creates an account. It does not return a token; the caller logs in
// afterwards, matching the store's signup-then-login flow.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	if err := c.post(ctx, "/auth/signup/", req, nil); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. Storing the token is the
// caller's concern.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.post(ctx, "/auth/login/", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// UserProfile is the authenticated user's profile.
type UserProfile struct {
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.get(ctx, "/auth/user/", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
