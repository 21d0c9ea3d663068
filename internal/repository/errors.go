// Package repository holds the data access layer for listings and their
// bookings. Sentinel errors let handlers map failures to HTTP statuses.
package repository

import "errors"

// ErrPropertyNotFound is returned when a property does not exist or belongs
// to another owner. The two cases are indistinguishable to callers so that
// listing IDs of other owners are not disclosed.
var ErrPropertyNotFound = errors.New("property not found")
