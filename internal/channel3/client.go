package channel3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	"github.com/fr0stylo/storeconnect/internal/observability"
)

const (
	disconnectPath = "/v0/woocommerce/webhook/disconnect"
	checkoutPath   = "/v0/woocommerce/pixel/checkout"

	eventCheckoutCompleted = "checkout_completed"
)

// Client calls the remote Channel3 service.
type Client struct {
	baseURL      string
	pixelBaseURL string
	httpClient   *http.Client
	now          func() time.Time
}

var (
	_ ports.DisconnectNotifier = (*Client)(nil)
	_ ports.CheckoutReporter   = (*Client)(nil)
)

// NewClient builds a client. pixelBaseURL falls back to baseURL.
func NewClient(baseURL, pixelBaseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	pixelBaseURL = strings.TrimRight(strings.TrimSpace(pixelBaseURL), "/")
	if pixelBaseURL == "" {
		pixelBaseURL = baseURL
	}
	return &Client{
		baseURL:      baseURL,
		pixelBaseURL: pixelBaseURL,
		httpClient:   &http.Client{Timeout: timeout, Transport: observability.HTTPTransport(nil)},
		now:          time.Now,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// NotifyDisconnect tells the remote side this store unlinked itself.
func (c *Client) NotifyDisconnect(ctx context.Context, storeURL string) error {
	if !c.Enabled() {
		return fmt.Errorf("channel3 client not configured")
	}
	endpoint := c.baseURL + disconnectPath + "?store_url=" + url.QueryEscape(storeURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "disconnect notification")
}

type checkoutEvent struct {
	Event        string                    `json:"event"`
	Timestamp    string                    `json:"timestamp"`
	AccountID    string                    `json:"accountId"`
	ClientID     *string                   `json:"clientId"`
	OrderID      string                    `json:"orderId"`
	TotalPrice   decimal.Decimal           `json:"totalPrice"`
	CurrencyCode string                    `json:"currencyCode"`
	LineItems    []domain.CheckoutLineItem `json:"lineItems"`
}

// ReportCheckout posts a checkout_completed event to the pixel endpoint.
func (c *Client) ReportCheckout(ctx context.Context, accountID string, order domain.CheckoutOrder) error {
	if !c.Enabled() {
		return fmt.Errorf("channel3 client not configured")
	}
	event := checkoutEvent{
		Event:        eventCheckoutCompleted,
		Timestamp:    c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		AccountID:    accountID,
		OrderID:      order.OrderID,
		TotalPrice:   order.TotalPrice,
		CurrencyCode: order.CurrencyCode,
		LineItems:    order.LineItems,
	}
	if event.LineItems == nil {
		event.LineItems = []domain.CheckoutLineItem{}
	}
	if clientID := strings.TrimSpace(order.ClientID); clientID != "" {
		event.ClientID = &clientID
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pixelBaseURL+checkoutPath, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "checkout event")
}

func (c *Client) do(req *http.Request, what string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed: status %d: %s", what, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
