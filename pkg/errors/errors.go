// Package errors defines the error taxonomy for the data-access layer.
// Callers branch on error kind (key-value store, relational store, event
// dispatch) and on the condition-failed flag, never on message text.
package errors

import (
	"errors"
	"fmt"
)

// KeyValueStoreError wraps a failure from the key-value backend.
// ConditionFailed is set when the backend rejected a conditional write,
// including a conditional-check failure inside a canceled transaction.
// Callers use it to drive optimistic-concurrency retry loops.
type KeyValueStoreError struct {
	Op              string
	Table           string
	ConditionFailed bool
	Message         string
	Err             error
}

func (e *KeyValueStoreError) Error() string {
	msg := fmt.Sprintf("keyvalue %s", e.Op)
	if e.Table != "" {
		msg += fmt.Sprintf(" on %s", e.Table)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *KeyValueStoreError) Unwrap() error {
	return e.Err
}

// NewKeyValueStore creates a generic key-value store error.
func NewKeyValueStore(op, table, message string, cause error) error {
	return &KeyValueStoreError{Op: op, Table: table, Message: message, Err: cause}
}

// NewConditionFailed creates a key-value store error marking a failed
// conditional write.
func NewConditionFailed(op, table string, cause error) error {
	return &KeyValueStoreError{
		Op:              op,
		Table:           table,
		ConditionFailed: true,
		Message:         "conditional check failed",
		Err:             cause,
	}
}

// RelationalStoreError wraps a failure from the relational backend.
// SQL carries the failing statement text for diagnostics.
type RelationalStoreError struct {
	Op      string
	SQL     string
	Message string
	Err     error
}

func (e *RelationalStoreError) Error() string {
	msg := fmt.Sprintf("relational %s", e.Op)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.SQL != "" {
		msg += fmt.Sprintf(" [sql: %s]", e.SQL)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *RelationalStoreError) Unwrap() error {
	return e.Err
}

// NewRelationalStore creates a relational store error carrying the failing SQL.
func NewRelationalStore(op, sql, message string, cause error) error {
	return &RelationalStoreError{Op: op, SQL: sql, Message: message, Err: cause}
}

// EventDispatchError wraps the last underlying failure after event
// publication retries are exhausted.
type EventDispatchError struct {
	DetailType string
	Attempts   int
	Err        error
}

func (e *EventDispatchError) Error() string {
	return fmt.Sprintf("event dispatch of %s failed after %d attempts: %v", e.DetailType, e.Attempts, e.Err)
}

func (e *EventDispatchError) Unwrap() error {
	return e.Err
}

// NewEventDispatch creates an event dispatch error.
func NewEventDispatch(detailType string, attempts int, cause error) error {
	return &EventDispatchError{DetailType: detailType, Attempts: attempts, Err: cause}
}

// IsKeyValueStore reports whether err is a key-value store error.
func IsKeyValueStore(err error) bool {
	var kvErr *KeyValueStoreError
	return errors.As(err, &kvErr)
}

// IsConditionFailed reports whether err is a key-value store error caused by
// a failed conditional write.
func IsConditionFailed(err error) bool {
	var kvErr *KeyValueStoreError
	return errors.As(err, &kvErr) && kvErr.ConditionFailed
}

// IsRelationalStore reports whether err is a relational store error.
func IsRelationalStore(err error) bool {
	var relErr *RelationalStoreError
	return errors.As(err, &relErr)
}

// IsEventDispatch reports whether err is an event dispatch error.
func IsEventDispatch(err error) bool {
	var dispatchErr *EventDispatchError
	return errors.As(err, &dispatchErr)
}
