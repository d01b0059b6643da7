package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth/gothic"

	"github.com/fr0stylo/storeconnect/internal/adapters/sqlite"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
	"github.com/fr0stylo/storeconnect/internal/db"
	"github.com/fr0stylo/storeconnect/internal/observability"
	"github.com/fr0stylo/storeconnect/internal/renderer"
)

const testStoreURL = "https://shop.example.com"

type harness struct {
	e          *echo.Echo
	store      *sqlite.Store
	tokens     *appservices.ActionTokens
	connection *appservices.ConnectionService
	admin      AuthUser
	customer   AuthUser
}

func initAuthStoreForTests() {
	store := sessions.NewCookieStore([]byte("test-session-secret-32-bytes-long"))
	store.Options = &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode}
	gothic.Store = store
}

func newHarness(t *testing.T, notifier ports.DisconnectNotifier) *harness {
	t.Helper()
	initAuthStoreForTests()

	database, err := db.New(filepath.Join(t.TempDir(), "routes-test"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	store := sqlite.NewStore(database)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := appservices.NewUserService(store, []string{"manager@example.com"}, log)
	ctx := context.Background()
	admin, err := users.SignIn(ctx, ports.UpsertUserInput{GitHubID: "gh:1", Email: "owner@example.com", Nickname: "owner"})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	customer, err := users.SignIn(ctx, ports.UpsertUserInput{GitHubID: "gh:2", Email: "buyer@example.com", Nickname: "buyer"})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	tokens := appservices.NewActionTokens("test-session-secret", time.Hour)
	creds := appservices.NewCredentialService(store, log)
	connection := appservices.NewConnectionService(store)
	connect := appservices.NewConnectService(creds, appservices.NewCallbackAllowList(false), tokens, appservices.StoreIdentity{
		URL:      testStoreURL,
		Name:     "Example Shop",
		Currency: "EUR",
	}, log)
	disconnect := appservices.NewDisconnectService(creds, tokens, notifier, testStoreURL, log)
	settings := appservices.NewSettingsService(store, connection, creds, observability.NewDebugSwitch(false), "https://trychannel3.com", log)
	tracking := appservices.NewTrackingService(connection, store, nil, tokens, "https://trychannel3.com", "EUR", log)

	e := echo.New()
	e.Renderer = &renderer.Renderer{}
	connectRoutes := NewConnectRoutes(connect, log)
	disconnectRoutes := NewDisconnectRoutes(disconnect)
	for _, r := range []interface{ RegisterRoutes(*echo.Echo) }{
		NewAuthRoutes(users, true),
		connectRoutes,
		disconnectRoutes,
		NewLegacyRoutes(connectRoutes, disconnectRoutes),
		NewSettingsRoutes(settings, disconnect, log),
		NewAPIRoutes(store, connection, creds, testStoreURL, log),
		NewTrackingRoutes(tracking, false),
	} {
		r.RegisterRoutes(e)
	}

	return &harness{
		e:          e,
		store:      store,
		tokens:     tokens,
		connection: connection,
		admin:      AuthUser{ID: admin.ID, Name: "owner", Email: admin.Email, Role: admin.Role},
		customer:   AuthUser{ID: customer.ID, Name: "buyer", Email: customer.Email, Role: customer.Role},
	}
}

// sessionCookies returns cookies carrying user in the auth session.
func sessionCookies(t *testing.T, user AuthUser) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, err := gothic.Store.Get(req, authSessionName)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	session.Values["user"] = user
	session.Values[authSessionUserIDKey] = user.ID
	if err := session.Save(req, rec); err != nil {
		t.Fatalf("session save: %v", err)
	}
	return rec.Result().Cookies()
}

func (h *harness) do(t *testing.T, method, target string, user *AuthUser, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if user != nil {
		for _, cookie := range sessionCookies(t, *user) {
			req.AddCookie(cookie)
		}
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func (h *harness) connectTarget(extra url.Values) string {
	values := url.Values{
		"callback_url": {"https://api.trychannel3.com/woo/callback"},
		"store_id":     {"store-1"},
		"merchant_id":  {"merchant-9"},
		"timestamp":    {strconv.FormatInt(time.Now().Unix(), 10)},
	}
	for key, value := range extra {
		values[key] = value
	}
	return appservices.ConnectPath + "?" + values.Encode()
}

// connect completes a handshake as the admin and returns the callback query.
func (h *harness) connect(t *testing.T) url.Values {
	t.Helper()

	token, err := h.tokens.Issue(appservices.ActionConnect, h.admin.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec := h.do(t, http.MethodGet, h.connectTarget(url.Values{"confirm": {"yes"}, "_wpnonce": {token}}), &h.admin, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	location, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if location.Query().Get("success") != "1" {
		t.Fatalf("expected success redirect, got %s", location)
	}
	return location.Query()
}
