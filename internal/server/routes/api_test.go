package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRequiresValidKeyPair(t *testing.T) {
	h := newHarness(t, nil)
	query := h.connect(t)

	tests := []struct {
		name   string
		key    string
		secret string
		code   int
	}{
		{name: "no credentials", code: http.StatusUnauthorized},
		{name: "unknown key", key: "ck_unknown", secret: query.Get("consumer_secret"), code: http.StatusUnauthorized},
		{name: "wrong secret", key: query.Get("consumer_key"), secret: "cs_wrong", code: http.StatusUnauthorized},
		{name: "valid pair", key: query.Get("consumer_key"), secret: query.Get("consumer_secret"), code: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, StatusPath, nil)
			if tc.key != "" {
				req.SetBasicAuth(tc.key, tc.secret)
			}
			rec := httptest.NewRecorder()
			h.e.ServeHTTP(rec, req)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestStatusReportsConnectionAndTouchesKey(t *testing.T) {
	h := newHarness(t, nil)
	query := h.connect(t)

	req := httptest.NewRequest(http.MethodGet, StatusPath+"?consumer_key="+query.Get("consumer_key")+"&consumer_secret="+query.Get("consumer_secret"), nil)
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Connected bool   `json:"connected"`
		StoreURL  string `json:"store_url"`
		Key       struct {
			Permissions  string `json:"permissions"`
			TruncatedKey string `json:"truncated_key"`
		} `json:"key"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	consumerKey := query.Get("consumer_key")
	if !payload.Connected || payload.StoreURL != testStoreURL || payload.Key.Permissions != "read" || payload.Key.TruncatedKey != consumerKey[len(consumerKey)-7:] {
		t.Fatalf("unexpected status %+v", payload)
	}

	state, _ := h.connection.Load(context.Background())
	key, err := h.store.GetAPIKeyByID(context.Background(), state.CredentialID)
	if err != nil || key.LastAccess == nil {
		t.Fatalf("expected last access to be recorded, got %+v %v", key, err)
	}
}
