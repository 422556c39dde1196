package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vinsara/storefront/internal/config"
	"github.com/vinsara/storefront/pkg/errors"
)

// TokenSource supplies the bearer token attached to authenticated calls and
// is cleared when the server reports the session invalid.
type TokenSource interface {
	Token() string
	Clear()
}

// Client talks to the remote store API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger

	// Collapses concurrent site-config fetches into one request.
	configGroup singleflight.Group
}

// NewClient creates a new store API client
func NewClient(cfg config.APIConfig, tokens TokenSource, logger *zap.Logger) *Client {
	// Normalize base URL - remove trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// errorPayload is the error envelope the store API uses across endpoints.
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (p errorPayload) best() string {
	switch {
	case p.Error != "":
		return p.Error
	case p.Message != "":
		return p.Message
	case p.Detail != "":
		return p.Detail
	default:
		return ""
	}
}

// do executes one JSON request against the store API. A 401 response clears
// the credential store before returning ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("Session rejected by API, clearing credentials",
			zap.String("path", path),
		)
		c.tokens.Clear()
		return &errors.ErrUnauthorized{Message: "session invalid, please sign in again"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload errorPayload
		_ = json.Unmarshal(respBody, &payload)
		if msg := payload.best(); msg != "" {
			return fmt.Errorf("store API error: %s", msg)
		}
		return fmt.Errorf("store API error: status %d", resp.StatusCode)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}
