package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/vinsara/storefront/internal/domain"
	"github.com/vinsara/storefront/pkg/errors"
)

// FetchSiteConfig fetches the shipping and tax rates. Concurrent callers
// share a single request; each checkout session fetches once and treats the
// result as immutable.
func (c *Client) FetchSiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	v, err, _ := c.configGroup.Do("site-config", func() (interface{}, error) {
		var cfg domain.SiteConfig
		if err := c.get(ctx, "/store/config/", &cfg); err != nil {
			return nil, fmt.Errorf("failed to fetch site config: %w", err)
		}
		return &cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SiteConfig), nil
}

// couponResponse is the validate-coupon envelope.
type couponResponse struct {
	Success  bool            `json:"success"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message"`
	Code     string          `json:"code"`
	Error    string          `json:"error"`
}

// ValidateCoupon submits a code and the current subtotal. The discount in a
// successful response is an absolute amount resolved server-side and is
// stored verbatim.
func (c *Client) ValidateCoupon(ctx context.Context, code string, orderTotal decimal.Decimal) (*domain.CouponApplication, error) {
	req := map[string]interface{}{
		"code":        code,
		"order_total": orderTotal,
	}

	var resp couponResponse
	if err := c.post(ctx, "/store/validate-coupon/", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = resp.Message
		}
		if reason == "" {
			reason = "coupon was not accepted"
		}
		return nil, &errors.ErrCouponRejected{Code: code, Reason: reason}
	}

	return &domain.CouponApplication{
		Code:     resp.Code,
		Discount: resp.Discount,
		Message:  resp.Message,
	}, nil
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Category string
	NewOnly  bool
}

// Products lists the catalog, optionally filtered by category or newness.
func (c *Client) Products(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	path := "/store/products/"
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.NewOnly {
		q.Set("is_new", "true")
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []domain.Product
	if err := c.get(ctx, path, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// ProductBySlug fetches one product.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, "/store/products/"+url.PathEscape(slug)+"/", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.get(ctx, "/store/categories/", &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}
