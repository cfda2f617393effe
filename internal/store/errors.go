package store

import (
	"errors"
	"fmt"
)

// Kind classifies a failed store operation.
type Kind int

const (
	// WriteFailed covers any rejected write, including an existing entry.
	WriteFailed Kind = iota + 1
	// DeleteFailed covers a missing entry and a rejected delete alike.
	DeleteFailed
)

func (k Kind) String() string {
	switch k {
	case WriteFailed:
		return "write failed"
	case DeleteFailed:
		return "delete failed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a StoreError's Kind.
var (
	ErrWriteFailed  = errors.New("write failed")
	ErrDeleteFailed = errors.New("delete failed")
)

// Input validation causes carried by WriteFailed errors.
var (
	ErrEmptyName  = errors.New("secret name must not be empty")
	ErrEmptyValue = errors.New("secret value must not be empty")
)

// StoreError is returned by Add and Delete.
//
// DeleteFailed errors never carry a cause: whether the entry was absent or
// the platform refused the delete is not revealed.
type StoreError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("secret %q: %s: %v", e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("secret %q: %s", e.Name, e.Kind)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrWriteFailed and ErrDeleteFailed by kind.
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrWriteFailed:
		return e.Kind == WriteFailed
	case ErrDeleteFailed:
		return e.Kind == DeleteFailed
	}
	return false
}
