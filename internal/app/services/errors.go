package services

import "errors"

// ErrInvalidRequest is returned for malformed or untrusted input (HTTP 400).
var ErrInvalidRequest = errors.New("invalid request")

// ErrForbidden is returned when the principal lacks the manage-store capability
// or presents an invalid or expired action token (HTTP 403).
var ErrForbidden = errors.New("forbidden")

// ErrUpstreamFailure is returned when credential issuance or its persistence fails.
// The connect flow reports it to the remote party as key_generation_failed.
var ErrUpstreamFailure = errors.New("credential issuance failed")

// ErrNotificationFailure wraps a failed outbound disconnect notification. It is logged, never returned to callers.
var ErrNotificationFailure = errors.New("disconnect notification failed")

// ErrNoOwner is returned when a credential is requested without a valid owning user.
var ErrNoOwner = errors.New("credential owner required")

// ErrStorageFailure wraps option or credential table failures.
var ErrStorageFailure = errors.New("storage failure")
