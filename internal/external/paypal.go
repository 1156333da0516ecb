package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mercadito/internal/errors"
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string // sandbox or live
	Currency     string
	Timeout      time.Duration
}

type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	currency     string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// PayPal Orders v2 models
type PayPalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PayPalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id,omitempty"`
	Description string       `json:"description,omitempty"`
	Amount      PayPalAmount `json:"amount"`
}

type PayPalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type PayPalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount PayPalAmount `json:"amount"`
}

type PayPalPayments struct {
	Captures []PayPalCapture `json:"captures"`
}

type PayPalPurchaseUnitResult struct {
	ReferenceID string          `json:"reference_id"`
	Amount      PayPalAmount    `json:"amount"`
	Payments    *PayPalPayments `json:"payments"`
}

type PayPalOrder struct {
	ID            string                     `json:"id"`
	Status        string                     `json:"status"`
	PurchaseUnits []PayPalPurchaseUnitResult `json:"purchase_units"`
	Links         []PayPalLink               `json:"links"`
}

// ReferenceID returns the reference of the first purchase unit; orders are
// always created with exactly one.
func (o *PayPalOrder) ReferenceID() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	return o.PurchaseUnits[0].ReferenceID
}

// CapturedAmount returns the captured value and currency, or the order
// amount when no capture is present yet.
func (o *PayPalOrder) CapturedAmount() (decimal.Decimal, string, error) {
	if len(o.PurchaseUnits) == 0 {
		return decimal.Zero, "", fmt.Errorf("order %s has no purchase units", o.ID)
	}

	unit := o.PurchaseUnits[0]
	amt := unit.Amount
	if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
		amt = unit.Payments.Captures[0].Amount
	}

	value, err := decimal.NewFromString(amt.Value)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("order %s: bad amount %q: %w", o.ID, amt.Value, err)
	}

	return value, amt.CurrencyCode, nil
}

// ApproveURL returns the link the buyer must visit to approve the order.
func (o *PayPalOrder) ApproveURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

func NewPayPalClient(cfg PayPalConfig) *PayPalClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	baseURL := "https://api-m.sandbox.paypal.com"
	if cfg.Mode == "live" {
		baseURL = "https://api-m.paypal.com"
	}

	return &PayPalClient{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		currency:     cfg.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *PayPalClient) Currency() string {
	return c.currency
}

// token returns a cached OAuth token, refreshing it when within a minute of
// expiry.
func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %v: %w", err, apperrors.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned %d: %w", resp.StatusCode, apperrors.ErrGatewayUnavailable)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *PayPalClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("paypal returned %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized {
			// Token may have been revoked early; drop it and retry once.
			resp.Body.Close()
			c.mu.Lock()
			c.accessToken = ""
			c.mu.Unlock()
			lastErr = fmt.Errorf("paypal returned 401")
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("paypal returned %d for %s %s", resp.StatusCode, method, path)
		}

		if out != nil {
			err = json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		} else {
			resp.Body.Close()
		}
		return nil
	}

	return fmt.Errorf("%s %s: %v: %w", method, path, lastErr, apperrors.ErrGatewayUnavailable)
}

// CreateOrder opens a PayPal order with a single purchase unit carrying the
// external reference.
func (c *PayPalClient) CreateOrder(ctx context.Context, reference, description string, amount decimal.Decimal, returnURL, cancelURL string) (*PayPalOrder, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []PayPalPurchaseUnit{{
			ReferenceID: reference,
			Description: description,
			Amount: PayPalAmount{
				CurrencyCode: c.currency,
				Value:        amount.StringFixed(2),
			},
		}},
		"application_context": map[string]string{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}

	var result PayPalOrder
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, &result); err != nil {
		return nil, err
	}

	if result.ApproveURL() == "" {
		return nil, fmt.Errorf("order %s created without approve link", result.ID)
	}

	return &result, nil
}

// CaptureOrder settles an approved order. Capturing an already-captured
// order is not an error at this layer; the caller inspects the status.
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*PayPalOrder, error) {
	var result PayPalOrder
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", struct{}{}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetOrder fetches the authoritative order state for webhook verification.
func (c *PayPalClient) GetOrder(ctx context.Context, orderID string) (*PayPalOrder, error) {
	var result PayPalOrder
	if err := c.doJSON(ctx, http.MethodGet, "/v2/checkout/orders/"+orderID, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
