package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestConsentPageListsScopesAndEscapesLinks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := ConsentPage(ConsentView{
		StoreName:  "<Shop>",
		ConfirmURL: "/wc-api/channel3-connect?confirm=yes&_wpnonce=abc",
		CancelURL:  "https://trychannel3.com/cb?error=cancelled",
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Read your product catalog",
		"Read inventory levels",
		"Access payment information",
		"&lt;Shop&gt;",
		`href="/wc-api/channel3-connect?confirm=yes&amp;_wpnonce=abc"`,
		`href="https://trychannel3.com/cb?error=cancelled"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("consent page missing %q", want)
		}
	}
}

func TestErrorPageDefaultsTitle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := ErrorPage(ErrorView{Message: "Invalid callback URL."}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "<h1>Authorization Error</h1>") || !strings.Contains(buf.String(), "Invalid callback URL.") {
		t.Fatalf("unexpected error page: %s", buf.String())
	}
}

func TestSettingsPageConnectedState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := SettingsPage(SettingsView{
		Connected:     true,
		ConnectedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		MerchantID:    "merchant-9",
		TruncatedKey:  "abc1234",
		DashboardURL:  "https://trychannel3.com/brands/merchant-9/integrations",
		DisconnectURL: "/settings/channel3/disconnect?channel3_nonce=tok",
		CSRFToken:     "csrf-token",
		Disconnected:  false,
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"since 2026-03-01 12:00 UTC", "last used never", "channel3_nonce=tok", `value="csrf-token"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("settings page missing %q", want)
		}
	}
	if strings.Contains(out, "Disconnected from Channel3.") {
		t.Fatalf("unexpected disconnect notice")
	}
}

func TestLoginPageKeepsNextAndDevForm(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := LoginPage(LoginView{Next: "/wc-api/channel3-connect?a=1&b=2", DevLogin: true}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`href="/auth/github?next=%2Fwc-api%2Fchannel3-connect%3Fa%3D1%26b%3D2"`,
		`action="/auth/dev/login"`,
		`name="next" value="/wc-api/channel3-connect?a=1&amp;b=2"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("login page missing %q in %s", want, out)
		}
	}

	buf.Reset()
	if err := LoginPage(LoginView{}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `href="/auth/github"`) || strings.Contains(buf.String(), "Development login") {
		t.Fatalf("unexpected plain login page: %s", buf.String())
	}
}

func TestSettingsPageDisconnectedWithDebugLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := SettingsPage(SettingsView{
		DashboardURL: "https://trychannel3.com",
		DebugLogging: true,
		Disconnected: true,
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Disconnected from Channel3.", "Not connected.", `value="yes" checked>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("settings page missing %q", want)
		}
	}
	if strings.Contains(out, "Open Channel3 dashboard") {
		t.Fatalf("connected actions rendered while disconnected")
	}
}

func TestPagesRejectUnsafeURLs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := ConsentPage(ConsentView{ConfirmURL: "javascript:alert(1)", CancelURL: "https://trychannel3.com"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "javascript:") {
		t.Fatalf("unsafe URL rendered: %s", buf.String())
	}
}
