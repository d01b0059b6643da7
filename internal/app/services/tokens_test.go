package services

import (
	"errors"
	"testing"
	"time"
)

func TestActionTokensBindActionAndUser(t *testing.T) {
	t.Parallel()

	tokens := NewActionTokens(testSecret, time.Hour)
	token, err := tokens.Issue(ActionConnect, adminID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := tokens.Verify(ActionConnect, adminID, token); err != nil {
		t.Fatalf("expected token to verify: %v", err)
	}
	if err := tokens.Verify(ActionDisconnect, adminID, token); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected wrong action to be forbidden, got %v", err)
	}
	if err := tokens.Verify(ActionConnect, customerID, token); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected wrong user to be forbidden, got %v", err)
	}
	if err := tokens.Verify(ActionConnect, adminID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected empty token to be forbidden, got %v", err)
	}

	other := NewActionTokens("another-secret", time.Hour)
	if err := other.Verify(ActionConnect, adminID, token); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected foreign key to be forbidden, got %v", err)
	}
}

func TestActionTokensRequireUser(t *testing.T) {
	t.Parallel()

	if _, err := NewActionTokens(testSecret, time.Hour).Issue(ActionConnect, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestActionTokensExpire(t *testing.T) {
	t.Parallel()

	tokens := NewActionTokens(testSecret, time.Second)
	token, err := tokens.Issue(ActionDisconnect, adminID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(2100 * time.Millisecond)
	if err := tokens.Verify(ActionDisconnect, adminID, token); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected expired token to be forbidden, got %v", err)
	}
}

func TestActionTokensBindSubject(t *testing.T) {
	t.Parallel()

	tokens := NewActionTokens(testSecret, time.Hour)
	token, err := tokens.IssueSubject(ActionCheckout, "1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := tokens.VerifySubject(ActionCheckout, "1001", token); err != nil {
		t.Fatalf("expected token to verify: %v", err)
	}
	if err := tokens.VerifySubject(ActionCheckout, "1002", token); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected other subject to be forbidden, got %v", err)
	}
	if err := tokens.VerifySubject(ActionConnect, "1001", token); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected wrong action to be forbidden, got %v", err)
	}
	if _, err := tokens.IssueSubject(ActionCheckout, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected empty subject to be rejected, got %v", err)
	}

	userToken, err := tokens.Issue(ActionCheckout, adminID)
	if err != nil {
		t.Fatalf("issue user token: %v", err)
	}
	if err := tokens.VerifySubject(ActionCheckout, "1001", userToken); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected user token to be rejected as an order token, got %v", err)
	}
}
