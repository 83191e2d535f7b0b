package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("email already registered")
)

// ViolationKind separates malformed input from input that is well formed but not allowed.
type ViolationKind string

const (
	InvalidFormat   ViolationKind = "invalid_format"
	PolicyViolation ViolationKind = "policy_violation"
)

// FieldViolation is one failed rule on one field.
type FieldViolation struct {
	Field   string        `json:"field"`
	Rule    string        `json:"rule"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// ValidationError collects every rule a candidate record failed.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// StorageError wraps a failed read or write of the snapshot.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("snapshot %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
