package services

import "testing"

func TestCallbackAllowList(t *testing.T) {
	t.Parallel()

	prod := NewCallbackAllowList(false)
	debug := NewCallbackAllowList(true, WithExtraHosts(" Staging.Example.com ", ""))

	tests := []struct {
		name  string
		list  *CallbackAllowList
		host  string
		allow bool
	}{
		{name: "production host", list: prod, host: "api.trychannel3.com", allow: true},
		{name: "case insensitive", list: prod, host: "WWW.TryChannel3.com", allow: true},
		{name: "lookalike suffix", list: prod, host: "trychannel3.com.evil.test", allow: false},
		{name: "dev host outside debug", list: prod, host: "localhost", allow: false},
		{name: "dev host in debug", list: debug, host: "channel3-2.ngrok.dev", allow: true},
		{name: "filter host", list: debug, host: "staging.example.com", allow: true},
		{name: "empty", list: debug, host: "", allow: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.list.Allows(tc.host); got != tc.allow {
				t.Fatalf("Allows(%q) = %v, want %v", tc.host, got, tc.allow)
			}
		})
	}
}

func TestCallbackAllowListURL(t *testing.T) {
	t.Parallel()

	list := NewCallbackAllowList(true)

	if u, ok := list.AllowsURL("http://localhost:8080/cb?x=1"); u == nil || !ok {
		t.Fatalf("expected localhost with port to be allowed, got %v %v", u, ok)
	}
	if u, ok := list.AllowsURL("javascript://trychannel3.com/"); u != nil || ok {
		t.Fatalf("expected non-http scheme to be rejected")
	}
	if u, ok := list.AllowsURL("/relative/path"); u != nil || ok {
		t.Fatalf("expected relative url to be rejected")
	}
	if u, ok := list.AllowsURL("https://example.org/cb"); u == nil || ok {
		t.Fatalf("expected parsed but disallowed url, got %v %v", u, ok)
	}
}

func TestCallbackAllowListDeduplicates(t *testing.T) {
	t.Parallel()

	list := NewCallbackAllowList(false, WithExtraHosts("TRYCHANNEL3.COM"))
	if got := len(list.Hosts()); got != 3 {
		t.Fatalf("expected 3 hosts, got %d: %v", got, list.Hosts())
	}
}
