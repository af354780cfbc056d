// Package store holds the external record stores that back a jurnal sheet.
//
// A store deals only in raw records (header row first) and an opaque change
// token. Reads of a resource that was never written report ErrNotFound.
// Writes are optimistic: they succeed only when the caller's token still
// matches the store's current token, and fail with ErrConflict otherwise.
// The empty token means "the resource did not exist when I read it".
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a resource that has never been written.
	ErrNotFound = errors.New("resource not found")
	// ErrUnavailable wraps any I/O failure talking to the backing store.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrMalformed reports stored content that cannot be parsed as a table.
	ErrMalformed = errors.New("malformed sheet content")
	// ErrConflict reports that the resource changed since it was read.
	ErrConflict = errors.New("sheet changed since it was read")
)

// Content is one read of a resource.
type Content struct {
	Records [][]string
	Token   string
}

// Store reads and replaces whole sheets.
type Store interface {
	Read(ctx context.Context, resource string) (Content, error)
	// Write replaces the resource with records if token matches the current
	// change token and returns the new token.
	Write(ctx context.Context, resource string, records [][]string, token string) (string, error)
	Close() error
}
