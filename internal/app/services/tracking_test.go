package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// signedOrder attaches the confirmation-page token for order.
func signedOrder(t *testing.T, tracking *TrackingService, order domain.CheckoutOrder) domain.CheckoutOrder {
	t.Helper()
	token, err := tracking.CheckoutToken(order.OrderID)
	if err != nil {
		t.Fatalf("checkout token: %v", err)
	}
	order.Token = token
	return order
}

func TestTrackingSkipsWhenDisconnected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reporter := mocks.NewMockCheckoutReporter(t)
	tracking := NewTrackingService(f.connection, f.store, reporter, f.tokens, "https://pixel.example.com/", "EUR", discardLogger())
	ctx := context.Background()

	if _, ok := tracking.PageView(ctx, "10", "SKU"); ok {
		t.Fatalf("expected no page-view config while disconnected")
	}
	sent, err := tracking.TrackCheckout(ctx, signedOrder(t, tracking, domain.CheckoutOrder{OrderID: "1001"}))
	if err != nil || sent {
		t.Fatalf("expected silent skip, got %v %v", sent, err)
	}
	if first, _ := f.store.MarkOrderTracked(ctx, "1001"); !first {
		t.Fatalf("skipped checkout must not consume the order marker")
	}
}

func TestTrackingPageViewConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	connectStore(t, f)
	tracking := NewTrackingService(f.connection, f.store, nil, f.tokens, "https://pixel.example.com/", "EUR", discardLogger())

	cfg, ok := tracking.PageView(context.Background(), " 10 ", "SKU-1")
	if !ok {
		t.Fatalf("expected config while connected")
	}
	want := PageViewConfig{
		AccountID:  "merchant-9",
		Endpoint:   "https://pixel.example.com/v0/woocommerce/pixel/page-view",
		ProductID:  "10",
		ProductSKU: "SKU-1",
		Currency:   "EUR",
	}
	if cfg != want {
		t.Fatalf("config = %+v, want %+v", cfg, want)
	}
}

func TestTrackCheckoutSendsOncePerOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	connectStore(t, f)
	reporter := mocks.NewMockCheckoutReporter(t)
	reporter.EXPECT().
		ReportCheckout(mock.Anything, "merchant-9", mock.MatchedBy(func(order domain.CheckoutOrder) bool {
			return order.OrderID == "1001" && order.CurrencyCode == "EUR"
		})).
		Return(nil).
		Once()
	tracking := NewTrackingService(f.connection, f.store, reporter, f.tokens, "https://pixel.example.com", "EUR", discardLogger())
	ctx := context.Background()

	order := signedOrder(t, tracking, domain.CheckoutOrder{OrderID: "1001", TotalPrice: decimal.RequireFromString("19.99")})
	if sent, err := tracking.TrackCheckout(ctx, order); err != nil || !sent {
		t.Fatalf("expected first checkout to be sent, got %v %v", sent, err)
	}
	if sent, err := tracking.TrackCheckout(ctx, order); err != nil || sent {
		t.Fatalf("expected refresh to be deduplicated, got %v %v", sent, err)
	}
}

func TestTrackCheckoutSwallowsDeliveryFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	connectStore(t, f)
	reporter := mocks.NewMockCheckoutReporter(t)
	reporter.EXPECT().ReportCheckout(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("unreachable")).Once()
	tracking := NewTrackingService(f.connection, f.store, reporter, f.tokens, "https://pixel.example.com", "EUR", discardLogger())

	sent, err := tracking.TrackCheckout(context.Background(), signedOrder(t, tracking, domain.CheckoutOrder{OrderID: "7"}))
	if err != nil || sent {
		t.Fatalf("expected swallowed failure, got %v %v", sent, err)
	}
}

func TestTrackCheckoutRequiresOrderID(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	tracking := NewTrackingService(f.connection, f.store, nil, f.tokens, "https://pixel.example.com", "EUR", discardLogger())
	if _, err := tracking.TrackCheckout(context.Background(), domain.CheckoutOrder{OrderID: "  "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestTrackCheckoutRejectsNegativeTotal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	connectStore(t, f)
	reporter := mocks.NewMockCheckoutReporter(t)
	tracking := NewTrackingService(f.connection, f.store, reporter, f.tokens, "https://pixel.example.com", "EUR", discardLogger())

	order := domain.CheckoutOrder{OrderID: "1002", TotalPrice: decimal.RequireFromString("-5.00")}
	if _, err := tracking.TrackCheckout(context.Background(), order); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	reporter.AssertNotCalled(t, "ReportCheckout", mock.Anything, mock.Anything, mock.Anything)
	if first, _ := f.store.MarkOrderTracked(context.Background(), "1002"); !first {
		t.Fatalf("rejected checkout must not consume the order marker")
	}
}

func TestTrackCheckoutRequiresOrderToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	connectStore(t, f)
	reporter := mocks.NewMockCheckoutReporter(t)
	tracking := NewTrackingService(f.connection, f.store, reporter, f.tokens, "https://pixel.example.com", "EUR", discardLogger())
	ctx := context.Background()

	otherToken, err := tracking.CheckoutToken("2000")
	if err != nil {
		t.Fatalf("checkout token: %v", err)
	}
	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "other order", token: otherToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tracking.TrackCheckout(ctx, domain.CheckoutOrder{OrderID: "1001", Token: tc.token})
			if !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
	reporter.AssertNotCalled(t, "ReportCheckout", mock.Anything, mock.Anything, mock.Anything)
	if first, _ := f.store.MarkOrderTracked(ctx, "1001"); !first {
		t.Fatalf("forged checkout must not consume the order marker")
	}
}
