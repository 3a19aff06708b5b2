package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means persistence was never configured; every gateway
	// call fails with it and the store stays in offline mode.
	ErrUnavailable = errors.New("persistence backend unavailable")
	ErrNotFound    = errors.New("not found")
	// ErrOffline rejects mutations while the store serves sample data.
	ErrOffline              = errors.New("store is offline: changes are disabled")
	ErrMissingOriginalPrice = errors.New("product is on sale without an original price")
)

// ConnectivityError wraps network level failures talking to the backend.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: connectivity: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err should push the store into offline mode.
func IsConnectivity(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
