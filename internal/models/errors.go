package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate = errors.New("invalid date format")
	ErrInvalidLink = errors.New("invalid link format")

	ErrEventNotFound     = errors.New("event not found")
	ErrAlreadySubscribed = errors.New("already subscribed")
)

// StoreError reports a connectivity or constraint failure of the event store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
