package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrAccountExists      = errors.New("account already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("password must be between 1 and 72 bytes")
	ErrInvalidItem        = errors.New("invalid item")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrForbidden          = errors.New("forbidden")
	ErrOrderNotFound      = errors.New("order not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// StoreError marks a transport or transaction failure. It matches
// ErrStoreUnavailable and still unwraps to the driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
