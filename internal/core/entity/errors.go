package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotRegistered     = errors.New("behaviour not registered")
	ErrAlreadyRegistered = errors.New("behaviour already registered")
	ErrNotFound          = errors.New("attribute not found")
	ErrTimeout           = errors.New("call timed out")
	ErrUnreachable       = errors.New("entity unreachable")
	ErrUnknownMessage    = errors.New("unknown message")
	ErrInvalidBehaviour  = errors.New("invalid behaviour")
	ErrInvalidAttribute  = errors.New("invalid attribute")
)

// PanicError is the termination reason of an entity whose handler panicked.
type PanicError struct {
	Key   Key
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("behaviour %q panicked: %v", e.Key, e.Value)
}
