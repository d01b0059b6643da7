package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is a local user's store role.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleShopManager   Role = "shop_manager"
	RoleCustomer      Role = "customer"
)

// CanManageStore reports the manage-store capability.
func (r Role) CanManageStore() bool {
	return r == RoleAdministrator || r == RoleShopManager
}

// PermissionRead is the only permission ever granted to a Channel3 credential.
const PermissionRead = "read"

// ConnectionState is the persisted record of this installation's link to Channel3.
// The zero value is the disconnected state.
type ConnectionState struct {
	Connected          bool
	ConnectedAt        time.Time
	CredentialID       int64
	ExternalStoreID    string
	ExternalMerchantID string
	WebhookSecret      string
}

// IssuedCredential carries the plaintext key pair. It is returned exactly once,
// from issuance, and never stored in this form.
type IssuedCredential struct {
	ID             int64
	ConsumerKey    string
	ConsumerSecret string
	TruncatedKey   string
}

// CredentialInfo describes the active credential without secret material.
type CredentialInfo struct {
	KeyID        int64      `json:"key_id"`
	UserID       int64      `json:"user_id"`
	Description  string     `json:"description"`
	Permissions  string     `json:"permissions"`
	TruncatedKey string     `json:"truncated_key"`
	LastAccess   *time.Time `json:"last_access"`
}

// CheckoutLineItem is one order line reported to the checkout pixel.
type CheckoutLineItem struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId,omitempty"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutOrder is a completed order as submitted by the storefront.
type CheckoutOrder struct {
	OrderID      string             `json:"orderId"`
	TotalPrice   decimal.Decimal    `json:"totalPrice"`
	CurrencyCode string             `json:"currencyCode"`
	ClientID     string             `json:"clientId"`
	LineItems    []CheckoutLineItem `json:"lineItems"`
	// Token is the signed order token rendered on the confirmation page.
	Token        string             `json:"token"`
}
