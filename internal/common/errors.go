// Package common defines sentinel errors and small helpers shared by the
// storage, service and CLI layers of mindvault. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrorEmptyTitle = errors.New("title must not be empty")
)
