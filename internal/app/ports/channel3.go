package ports

import (
	"context"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
)

// DisconnectNotifier tells the remote service that this store disconnected.
type DisconnectNotifier interface {
	NotifyDisconnect(ctx context.Context, storeURL string) error
}

// CheckoutReporter delivers checkout_completed events to the remote pixel.
type CheckoutReporter interface {
	ReportCheckout(ctx context.Context, accountID string, order domain.CheckoutOrder) error
}
