package views

import (
	"net/url"
	"time"

	"github.com/a-h/templ"
)

const timeLayout = "2006-01-02 15:04 UTC"

func connectedSince(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return " since " + t.UTC().Format(timeLayout)
}

func formatLastAccess(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.UTC().Format(timeLayout)
}

func githubLoginURL(next string) string {
	if next == "" {
		return "/auth/github"
	}
	return "/auth/github?next=" + url.QueryEscape(next)
}

// ConsentView is the authorization prompt shown before credentials are issued.
type ConsentView struct {
	StoreName  string
	ConfirmURL string
	CancelURL  string
}

// ErrorView is a terminal protocol error.
type ErrorView struct {
	Title   string
	Message string
}

// ErrorPage renders a protocol error. An empty title becomes "Authorization Error".
func ErrorPage(view ErrorView) templ.Component {
	if view.Title == "" {
		view.Title = "Authorization Error"
	}
	return errorPage(view)
}

// LoginView configures the sign-in page.
type LoginView struct {
	Next     string
	DevLogin bool
}

// SettingsView is the Channel3 settings page.
type SettingsView struct {
	UserName      string
	Connected     bool
	ConnectedAt   time.Time
	StoreID       string
	MerchantID    string
	TruncatedKey  string
	LastAccess    *time.Time
	DashboardURL  string
	DisconnectURL string
	DebugLogging  bool
	Disconnected  bool
	Saved         bool
	CSRFToken     string
}
