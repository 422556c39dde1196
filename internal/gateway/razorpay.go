package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/config"
	"github.com/vinsara/storefront/internal/domain"
	pkgerrors "github.com/vinsara/storefront/pkg/errors"
)

// RazorpayCheckout opens the hosted Razorpay checkout and receives the
// gateway redirect on a loopback listener, the way CLI OAuth flows do.
type RazorpayCheckout struct {
	listenAddr  string
	checkoutURL string
	logger      *zap.Logger

	// OnOpen is called with the checkout URL the user must visit. Defaults
	// to printing it.
	OnOpen func(url string)

	mu   sync.Mutex
	open bool
}

// NewRazorpayCheckout creates a new hosted checkout gateway
func NewRazorpayCheckout(cfg config.GatewayConfig, logger *zap.Logger) *RazorpayCheckout {
	return &RazorpayCheckout{
		listenAddr:  cfg.ListenAddr,
		checkoutURL: cfg.CheckoutURL,
		logger:      logger,
	}
}

type callbackResult struct {
	result *domain.PaymentResult
	err    error
}

// Open starts the loopback listener, hands the user the checkout URL and
// waits for the redirect. The listener is single-use per attempt; a second
// concurrent Open is refused rather than starting a duplicate listener.
func (g *RazorpayCheckout) Open(ctx context.Context, session domain.PaymentSession, prefill Prefill) (*domain.PaymentResult, error) {
	g.mu.Lock()
	if g.open {
		g.mu.Unlock()
		return nil, &pkgerrors.ErrGateway{Message: "a payment is already in progress", Retryable: false}
	}
	g.open = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.open = false
		g.mu.Unlock()
	}()

	listener, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		return nil, &pkgerrors.ErrGateway{
			Message:   fmt.Sprintf("failed to start payment listener: %v", err),
			Retryable: true,
		}
	}

	results := make(chan callbackResult, 1)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/callback", func(c *gin.Context) {
		result := &domain.PaymentResult{
			GatewayOrderID: c.Query("razorpay_order_id"),
			PaymentID:      c.Query("razorpay_payment_id"),
			Signature:      c.Query("razorpay_signature"),
		}
		if result.GatewayOrderID == "" || result.PaymentID == "" || result.Signature == "" {
			c.String(http.StatusBadRequest, "Missing payment fields.")
			return
		}
		c.String(http.StatusOK, "Payment received. You can return to the store.")
		select {
		case results <- callbackResult{result: result}:
		default:
		}
	})

	router.GET("/cancel", func(c *gin.Context) {
		c.String(http.StatusOK, "Payment cancelled. You can return to the store.")
		select {
		case results <- callbackResult{err: ErrDismissed}:
		default:
		}
	})

	server := &http.Server{Handler: router}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case results <- callbackResult{err: &pkgerrors.ErrGateway{
				Message:   fmt.Sprintf("payment listener failed: %v", err),
				Retryable: true,
			}}:
			default:
			}
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			g.logger.Warn("Failed to shut down payment listener", zap.Error(err))
		}
	}()

	checkoutURL := g.buildURL(session, prefill, listener.Addr().String())
	g.logger.Info("Awaiting payment",
		zap.String("gateway_order_id", session.GatewayOrderID),
		zap.Int64("amount", session.Amount),
		zap.String("currency", session.Currency),
	)

	if g.OnOpen != nil {
		g.OnOpen(checkoutURL)
	} else {
		fmt.Printf("Complete your payment at:\n  %s\n", checkoutURL)
	}

	select {
	case r := <-results:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ErrDismissed
	}
}

func (g *RazorpayCheckout) buildURL(session domain.PaymentSession, prefill Prefill, addr string) string {
	q := url.Values{}
	q.Set("key_id", session.Key)
	q.Set("order_id", session.GatewayOrderID)
	q.Set("amount", fmt.Sprintf("%d", session.Amount))
	q.Set("currency", session.Currency)
	if prefill.Name != "" {
		q.Set("prefill[name]", prefill.Name)
	}
	if prefill.Email != "" {
		q.Set("prefill[email]", prefill.Email)
	}
	if prefill.Phone != "" {
		q.Set("prefill[contact]", prefill.Phone)
	}
	q.Set("callback_url", "http://"+addr+"/callback")
	q.Set("cancel_url", "http://"+addr+"/cancel")

	return g.checkoutURL + "?" + q.Encode()
}
