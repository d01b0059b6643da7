package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	"github.com/fr0stylo/storeconnect/internal/observability"
)

const pageViewPath = "/v0/woocommerce/pixel/page-view"

// PageViewConfig is handed to the storefront script.
type PageViewConfig struct {
	AccountID  string `json:"accountId"`
	Endpoint   string `json:"endpoint"`
	ProductID  string `json:"productId"`
	ProductSKU string `json:"productSku"`
	Currency   string `json:"currency"`
}

// TrackingService guards the storefront beacons.
type TrackingService struct {
	connection *ConnectionService
	orders     ports.OrderTrackingStore
	reporter   ports.CheckoutReporter
	tokens     *ActionTokens
	pixelBase  string
	currency   string
	log        *slog.Logger
}

// NewTrackingService constructs the beacon guards. reporter may be nil, in
// which case checkouts are marked but never sent. tokens signs the per-order
// checkout tokens.
func NewTrackingService(connection *ConnectionService, orders ports.OrderTrackingStore, reporter ports.CheckoutReporter, tokens *ActionTokens, pixelBase, currency string, log *slog.Logger) *TrackingService {
	if log == nil {
		log = slog.Default()
	}
	return &TrackingService{
		connection: connection,
		orders:     orders,
		reporter:   reporter,
		tokens:     tokens,
		pixelBase:  strings.TrimRight(pixelBase, "/"),
		currency:   currency,
		log:        log,
	}
}

// accountID returns the merchant id when tracking is allowed.
func (s *TrackingService) accountID(ctx context.Context) (string, bool) {
	state, err := s.connection.Load(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "tracking state unavailable", "error", err)
		return "", false
	}
	if !state.Connected || state.ExternalMerchantID == "" {
		return "", false
	}
	return state.ExternalMerchantID, true
}

// PageView returns the script configuration, or false when the store is not
// connected or has no merchant id.
func (s *TrackingService) PageView(ctx context.Context, productID, sku string) (PageViewConfig, bool) {
	accountID, ok := s.accountID(ctx)
	if !ok {
		observability.RecordBeacon("page_view", "skipped")
		return PageViewConfig{}, false
	}
	observability.RecordBeacon("page_view", "configured")
	return PageViewConfig{
		AccountID:  accountID,
		Endpoint:   s.pixelBase + pageViewPath,
		ProductID:  strings.TrimSpace(productID),
		ProductSKU: strings.TrimSpace(sku),
		Currency:   s.currency,
	}, true
}

// CheckoutToken signs orderID for the order-confirmation page. Only orders
// carrying a matching token are reported.
func (s *TrackingService) CheckoutToken(orderID string) (string, error) {
	return s.tokens.IssueSubject(ActionCheckout, strings.TrimSpace(orderID))
}

// TrackCheckout reports a completed order at most once. The order is marked
// before delivery; delivery failures are logged and reported as not sent.
// Only a malformed or unsigned order returns an error.
func (s *TrackingService) TrackCheckout(ctx context.Context, order domain.CheckoutOrder) (bool, error) {
	order.OrderID = strings.TrimSpace(order.OrderID)
	if order.OrderID == "" {
		return false, fmt.Errorf("%w: missing order id", ErrInvalidRequest)
	}
	if order.TotalPrice.IsNegative() {
		return false, fmt.Errorf("%w: negative order total", ErrInvalidRequest)
	}
	if err := s.tokens.VerifySubject(ActionCheckout, order.OrderID, order.Token); err != nil {
		s.log.WarnContext(ctx, "checkout beacon rejected", "order_id", order.OrderID, "error", err)
		observability.RecordBeacon("checkout_completed", "forbidden")
		return false, err
	}

	accountID, ok := s.accountID(ctx)
	if !ok {
		observability.RecordBeacon("checkout_completed", "skipped")
		return false, nil
	}

	first, err := s.orders.MarkOrderTracked(ctx, order.OrderID)
	if err != nil {
		s.log.WarnContext(ctx, "checkout marker failed", "order_id", order.OrderID, "error", err)
		observability.RecordBeacon("checkout_completed", "error")
		return false, nil
	}
	if !first {
		observability.RecordBeacon("checkout_completed", "duplicate")
		return false, nil
	}

	if order.CurrencyCode == "" {
		order.CurrencyCode = s.currency
	}
	if s.reporter == nil {
		observability.RecordBeacon("checkout_completed", "disabled")
		return false, nil
	}
	if err := s.reporter.ReportCheckout(ctx, accountID, order); err != nil {
		s.log.WarnContext(ctx, "checkout beacon failed", "order_id", order.OrderID, "error", err)
		observability.RecordBeacon("checkout_completed", "error")
		return false, nil
	}
	s.log.DebugContext(ctx, "checkout beacon sent", "order_id", order.OrderID)
	observability.RecordBeacon("checkout_completed", "sent")
	return true, nil
}
