package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
)

func TestTrackingConfigNoContentWhenDisconnected(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/channel3/tracking/config?product_id=10", nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	var clientID string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == clientIDCookie {
			clientID = cookie.Value
		}
	}
	parsed, err := uuid.Parse(clientID)
	if err != nil || parsed.Version() != 4 {
		t.Fatalf("expected v4 client id cookie, got %q", clientID)
	}
}

func TestTrackingConfigWhenConnected(t *testing.T) {
	h := newHarness(t, nil)
	h.connect(t)

	rec := h.do(t, http.MethodGet, "/channel3/tracking/config?product_id=10&sku=MUG", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"accountId":"merchant-9"`, `"endpoint":"https://trychannel3.com/v0/woocommerce/pixel/page-view"`, `"productSku":"MUG"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("config missing %s: %s", want, body)
		}
	}
}

func TestTrackingCheckoutNeverFails(t *testing.T) {
	h := newHarness(t, nil)

	for _, body := range []string{`{"orderId":"1001","totalPrice":"9.99"}`, `not json`, `{}`, `{"orderId":"1003","totalPrice":12.5}`} {
		req := httptest.NewRequest(http.MethodPost, "/channel3/tracking/checkout", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		h.e.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("body %q: expected 204, got %d", body, rec.Code)
		}
	}
}

func TestTrackingCheckoutIgnoresUnsignedOrders(t *testing.T) {
	h := newHarness(t, nil)
	h.connect(t)
	ctx := context.Background()

	post := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/channel3/tracking/checkout", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		h.e.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("body %q: expected 204, got %d", body, rec.Code)
		}
	}

	post(`{"orderId":"1001","totalPrice":"9.99"}`)
	if first, err := h.store.MarkOrderTracked(ctx, "1001"); err != nil || !first {
		t.Fatalf("unsigned checkout must not mark the order: %v %v", first, err)
	}

	token, err := h.tokens.IssueSubject(appservices.ActionCheckout, "1002")
	if err != nil {
		t.Fatalf("checkout token: %v", err)
	}
	post(`{"orderId":"1002","totalPrice":"9.99","token":"` + token + `"}`)
	if first, err := h.store.MarkOrderTracked(ctx, "1002"); err != nil || first {
		t.Fatalf("signed checkout must mark the order: %v %v", first, err)
	}
}
