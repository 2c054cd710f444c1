//go:build !cgo

package graph

import "context"

// Open returns an in-memory store when dbPath is empty. On-disk indexes need
// KuzuDB and fail with ErrPersistenceUnavailable.
func Open(_ context.Context, dbPath string) (Store, error) {
	if dbPath != "" {
		return nil, ErrPersistenceUnavailable
	}
	return NewMemStore(), nil
}
