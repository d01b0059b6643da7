package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
)

const (
	testStoreURL = "https://shop.example.com"
	testSecret   = "test-session-secret"
	adminID      = int64(1)
	customerID   = int64(2)
)

type fixture struct {
	store      *memStore
	tokens     *ActionTokens
	creds      *CredentialService
	connection *ConnectionService
	connect    *ConnectService
	disconnect *DisconnectService
	now        time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, notifier ports.DisconnectNotifier) *fixture {
	t.Helper()

	store := newMemStore()
	store.addUser(adminID, domain.RoleAdministrator)
	store.addUser(customerID, domain.RoleCustomer)

	log := discardLogger()
	tokens := NewActionTokens(testSecret, time.Hour)
	creds := NewCredentialService(store, log)
	connect := NewConnectService(creds, NewCallbackAllowList(false), tokens, StoreIdentity{
		URL:      testStoreURL,
		Name:     "Example Shop",
		Currency: "EUR",
	}, log)
	now := time.Unix(1_700_000_000, 0)
	connect.now = func() time.Time { return now }

	return &fixture{
		store:      store,
		tokens:     tokens,
		creds:      creds,
		connection: NewConnectionService(store),
		connect:    connect,
		disconnect: NewDisconnectService(creds, tokens, notifier, testStoreURL, log),
		now:        now,
	}
}
