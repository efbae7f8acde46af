// Package repository declares the persistence interfaces. Implementations
// live in subpackages (postgres). Lookups of missing rows return
// sql.ErrNoRows.
package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleState is returned when a conditional update found the row in
	// a different state than expected.
	ErrStaleState = errors.New("record state changed")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
