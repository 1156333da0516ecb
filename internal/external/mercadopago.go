package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mercadito/internal/errors"
)

type MercadoPagoConfig struct {
	BaseURL     string
	AccessToken string
	Currency    string
	Timeout     time.Duration
}

type MercadoPagoClient struct {
	baseURL     string
	accessToken string
	currency    string
	httpClient  *http.Client
}

// MercadoPago checkout preference models
type PreferenceItem struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

type PreferenceBackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type PreferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem   `json:"items"`
	ExternalReference string             `json:"external_reference"`
	BackURLs          PreferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	NotificationURL   string             `json:"notification_url"`
	Payer             *PreferencePayer   `json:"payer,omitempty"`
}

type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type MPPayment struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	DateApproved      *time.Time      `json:"date_approved"`
}

func NewMercadoPagoClient(cfg MercadoPagoConfig) *MercadoPagoClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &MercadoPagoClient{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		currency:    cfg.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *MercadoPagoClient) Currency() string {
	return c.currency
}

// doJSON performs one authorized request with a single retry on transport
// errors and 5xx responses. Anything still failing after the retry comes
// back as ErrGatewayUnavailable so handlers can answer 502 and let the
// provider redeliver.
func (c *MercadoPagoClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
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
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("mercadopago returned %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("mercadopago returned %d for %s %s", resp.StatusCode, method, path)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("%s %s: %v: %w", method, path, lastErr, apperrors.ErrGatewayUnavailable)
}

// CreatePreference registers a checkout preference and returns the URL the
// buyer is redirected to.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResponse, error) {
	for i := range req.Items {
		if req.Items[i].CurrencyID == "" {
			req.Items[i].CurrencyID = c.currency
		}
	}

	var result PreferenceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/checkout/preferences", req, &result); err != nil {
		return nil, err
	}

	if result.InitPoint == "" && result.SandboxInitPoint == "" {
		return nil, fmt.Errorf("preference created without init point")
	}

	return &result, nil
}

// GetPayment fetches the authoritative payment state. Reconciliation never
// trusts the webhook body or redirect query beyond the payment id.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*MPPayment, error) {
	var result MPPayment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
