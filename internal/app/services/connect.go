package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
)

const (
	// ConnectPath is the public connect endpoint.
	ConnectPath = "/wc-api/channel3-connect"

	timestampWindow   = 300 * time.Second
	webhookSecretSize = 32

	connectErrorCancelled     = "cancelled"
	connectErrorKeyGeneration = "key_generation_failed"
)

// AuthorizationRequest is the inbound connect request. It is never persisted.
type AuthorizationRequest struct {
	CallbackURL string
	StoreID     string
	MerchantID  string
	Signature   string
	Timestamp   string
	Confirm     bool
	Nonce       string

	params url.Values
}

// ParseAuthorizationRequest reads the connect query parameters.
func ParseAuthorizationRequest(values url.Values) AuthorizationRequest {
	return AuthorizationRequest{
		CallbackURL: strings.TrimSpace(values.Get("callback_url")),
		StoreID:     strings.TrimSpace(values.Get("store_id")),
		MerchantID:  strings.TrimSpace(values.Get("merchant_id")),
		Signature:   strings.TrimSpace(values.Get("signature")),
		Timestamp:   strings.TrimSpace(values.Get("timestamp")),
		Confirm:     values.Get("confirm") == "yes",
		Nonce:       values.Get("_wpnonce"),
		params:      values,
	}
}

// StoreIdentity is what the remote party learns about this store on connect.
type StoreIdentity struct {
	URL      string
	Name     string
	Currency string
}

// ConsentScreen is the data behind the consent page.
type ConsentScreen struct {
	StoreName  string
	ConfirmURL string
	CancelURL  string
}

// ConnectService runs the connect handshake.
type ConnectService struct {
	credentials *CredentialService
	allowList   *CallbackAllowList
	tokens      *ActionTokens
	identity    StoreIdentity
	log         *slog.Logger
	now         func() time.Time
	random      io.Reader
}

// NewConnectService constructs the connect flow.
func NewConnectService(credentials *CredentialService, allowList *CallbackAllowList, tokens *ActionTokens, identity StoreIdentity, log *slog.Logger) *ConnectService {
	if log == nil {
		log = slog.Default()
	}
	return &ConnectService{
		credentials: credentials,
		allowList:   allowList,
		tokens:      tokens,
		identity:    identity,
		log:         log,
		now:         time.Now,
		random:      rand.Reader,
	}
}

// Validate checks the callback host and the optional timestamp. It mutates nothing.
func (s *ConnectService) Validate(req AuthorizationRequest) (*url.URL, error) {
	if req.CallbackURL == "" {
		return nil, fmt.Errorf("%w: missing callback_url", ErrInvalidRequest)
	}
	callback, ok := s.allowList.AllowsURL(req.CallbackURL)
	if callback == nil {
		return nil, fmt.Errorf("%w: malformed callback_url", ErrInvalidRequest)
	}
	if !ok {
		return nil, fmt.Errorf("%w: callback host %q not allowed", ErrInvalidRequest, callback.Hostname())
	}
	if req.Timestamp != "" {
		ts := absInt(req.Timestamp)
		age := s.now().Unix() - ts
		if age < 0 {
			age = -age
		}
		if time.Duration(age)*time.Second > timestampWindow {
			return nil, fmt.Errorf("%w: timestamp outside %s window", ErrInvalidRequest, timestampWindow)
		}
	}
	return callback, nil
}

// Consent builds the consent screen for an authenticated manager.
func (s *ConnectService) Consent(req AuthorizationRequest, role domain.Role, userID int64) (ConsentScreen, error) {
	callback, err := s.Validate(req)
	if err != nil {
		return ConsentScreen{}, err
	}
	if !role.CanManageStore() {
		return ConsentScreen{}, fmt.Errorf("%w: manage-store capability required", ErrForbidden)
	}
	token, err := s.tokens.Issue(ActionConnect, userID)
	if err != nil {
		return ConsentScreen{}, err
	}

	confirm := url.Values{}
	for key, values := range req.params {
		if key == "confirm" || key == "_wpnonce" {
			continue
		}
		confirm[key] = append([]string(nil), values...)
	}
	confirm.Set("confirm", "yes")
	confirm.Set("_wpnonce", token)

	return ConsentScreen{
		StoreName:  s.identity.Name,
		ConfirmURL: ConnectPath + "?" + confirm.Encode(),
		CancelURL:  withQuery(callback, url.Values{"error": {connectErrorCancelled}}),
	}, nil
}

// Authorize completes a confirmed request. On success it returns the callback
// URL carrying the credential. When issuance fails the returned URL carries
// error=key_generation_failed and the error wraps ErrUpstreamFailure.
func (s *ConnectService) Authorize(ctx context.Context, req AuthorizationRequest, role domain.Role, userID int64) (string, error) {
	callback, err := s.Validate(req)
	if err != nil {
		return "", err
	}
	if !role.CanManageStore() {
		return "", fmt.Errorf("%w: manage-store capability required", ErrForbidden)
	}
	if err := s.tokens.Verify(ActionConnect, userID, req.Nonce); err != nil {
		s.log.WarnContext(ctx, "connect confirmation rejected", "user_id", userID, "error", err)
		return "", err
	}

	secret, err := s.webhookSecret()
	if err != nil {
		return s.issueFailed(ctx, callback, err)
	}

	var issued domain.IssuedCredential
	err = s.credentials.Locked(ctx, func(tx ports.AppStore) error {
		var err error
		issued, err = s.credentials.issueTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := saveState(ctx, tx, domain.ConnectionState{
			Connected:          true,
			ConnectedAt:        s.now().UTC(),
			CredentialID:       issued.ID,
			ExternalStoreID:    req.StoreID,
			ExternalMerchantID: req.MerchantID,
			WebhookSecret:      secret,
		}); err != nil {
			return err
		}
		return tx.DeleteOptions(ctx, optionRetiredSecretHash)
	})
	if err != nil {
		return s.issueFailed(ctx, callback, err)
	}

	s.log.InfoContext(ctx, "store connected",
		"store_id", req.StoreID,
		"merchant_id", req.MerchantID,
		"key_id", issued.ID,
		"callback_host", callback.Hostname(),
	)

	return withQuery(callback, url.Values{
		"success":         {"1"},
		"consumer_key":    {issued.ConsumerKey},
		"consumer_secret": {issued.ConsumerSecret},
		"webhook_secret":  {secret},
		"store_url":       {s.identity.URL},
		"store_name":      {s.identity.Name},
		"store_id":        {req.StoreID},
		"merchant_id":     {req.MerchantID},
		"currency":        {s.identity.Currency},
	}), nil
}

func (s *ConnectService) issueFailed(ctx context.Context, callback *url.URL, cause error) (string, error) {
	s.log.ErrorContext(ctx, "credential generation failed", "error", cause)
	redirect := withQuery(callback, url.Values{"error": {connectErrorKeyGeneration}})
	return redirect, fmt.Errorf("%w: %w", ErrUpstreamFailure, cause)
}

func (s *ConnectService) webhookSecret() (string, error) {
	buf := make([]byte, webhookSecretSize)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// withQuery merges extra into u's existing query.
func withQuery(u *url.URL, extra url.Values) string {
	out := *u
	query := out.Query()
	for key, values := range extra {
		query[key] = values
	}
	out.RawQuery = query.Encode()
	return out.String()
}

// absInt reads a leading integer and returns its absolute value. Non-numeric input is 0.
func absInt(raw string) int64 {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "+-")
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	value, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		return 0
	}
	return value
}
