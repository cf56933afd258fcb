// Package payment implements the payment gateway: a Stripe Checkout Sessions
// client and webhook event verification. A checkout session is the opaque
// handle the client completes out-of-band; the artifact id rides along as the
// session's client reference, which is the only link between a payment and
// its deliverable.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diacritfix/diacritfix/types"
)

// Config configures the Stripe client.
type Config struct {
	// SecretKey is the Stripe API secret key.
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	// WebhookSecret verifies signed webhook events.
	WebhookSecret string `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
	// BaseURL is the API root, overridable for tests.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// SiteURL is the public site the checkout redirects back to.
	SiteURL string `yaml:"site_url" env:"SITE_URL"`
	// ProductName is shown on the checkout page.
	ProductName string `yaml:"product_name" env:"PRODUCT_NAME"`
	// Currency is the ISO 4217 lowercase currency code.
	Currency string `yaml:"currency" env:"CURRENCY"`
	// AmountCents is the price in the smallest currency unit.
	AmountCents int64 `yaml:"amount_cents" env:"AMOUNT_CENTS"`
	// Timeout bounds each round trip to the API.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// DefaultConfig returns the default payment configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.stripe.com",
		SiteURL:     "https://diacritfix.example",
		ProductName: "PDF cu diacritice reparate",
		Currency:    "eur",
		AmountCents: 199,
		Timeout:     30 * time.Second,
	}
}

// Client is a Stripe Checkout Sessions API client.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a Stripe client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = def.SiteURL
	}
	if cfg.ProductName == "" {
		cfg.ProductName = def.ProductName
	}
	if cfg.Currency == "" {
		cfg.Currency = def.Currency
	}
	if cfg.AmountCents <= 0 {
		cfg.AmountCents = def.AmountCents
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "payment")),
	}
}

// stripeError is the error envelope Stripe returns on failures.
type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckout opens a checkout session for one artifact. The artifact id
// is attached as client_reference_id and metadata so payment confirmations
// can be correlated back to the stored record.
func (c *Client) CreateCheckout(ctx context.Context, params types.CheckoutParams) (*types.CheckoutSession, error) {
	amount := params.AmountCents
	if amount <= 0 {
		amount = c.cfg.AmountCents
	}
	currency := params.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][product_data][name]", c.cfg.ProductName)
	form.Set("line_items[0][price_data][product_data][description]", params.DisplayName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", params.ArtifactID)
	form.Set("metadata[file_id]", params.ArtifactID)
	form.Set("metadata[file_name]", params.DisplayName)
	form.Set("success_url", fmt.Sprintf(
		"%s/download.html?file_id=%s&session_id={CHECKOUT_SESSION_ID}",
		strings.TrimRight(c.cfg.SiteURL, "/"), url.QueryEscape(params.ArtifactID)))
	form.Set("cancel_url", strings.TrimRight(c.cfg.SiteURL, "/")+"/?cancelled=true")

	session := &types.CheckoutSession{}
	err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()), session)
	if err != nil {
		if types.IsErrorCode(err, types.ErrUpstreamTimeout) {
			return nil, err
		}
		return nil, types.NewError(types.ErrPaymentSetupFailed, "checkout session creation failed").
			WithRetryable(true).WithCause(err)
	}

	c.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("artifact_id", params.ArtifactID),
	)
	return session, nil
}

// RetrieveCheckout fetches the current state of a checkout session.
func (c *Client) RetrieveCheckout(ctx context.Context, sessionID string) (*types.CheckoutSession, error) {
	session := &types.CheckoutSession{}
	err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, session)
	if err != nil {
		if types.IsErrorCode(err, types.ErrUpstreamTimeout) {
			return nil, err
		}
		return nil, types.NewError(types.ErrGatewayError, "checkout session lookup failed").
			WithRetryable(true).WithCause(err)
	}
	return session, nil
}

// Ping reports whether the payment gateway is reachable. Any HTTP response,
// including an authentication error, counts as reachable; only transport
// failures fail the check. It backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+"/v1", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body *strings.Reader, out any) error {
	var req *http.Request
	var err error
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return types.NewError(types.ErrUpstreamTimeout, "payment gateway timed out").
				WithRetryable(true).WithCause(err)
		}
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr stripeError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gateway status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed gateway response: %w", err)
	}
	return nil
}
