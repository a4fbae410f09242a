// Package common defines sentinel errors shared by the stores, services and
// the command layer of clipkeeper. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicate      = errors.New("duplicate")
	ErrTenantMismatch = errors.New("row belongs to another tenant")

	// Session errors.
	ErrNoTenant     = errors.New("no tenant in session")
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors.
	ErrInvalidTagName  = errors.New("invalid tag name")
	ErrInvalidTagColor = errors.New("invalid tag color")
	ErrInvalidCadence  = errors.New("invalid purge cadence")
	ErrEmptyContent    = errors.New("empty content")

	// Store availability.
	ErrCloudUnavailable      = errors.New("no cloud connection, working offline")
	ErrLocalStoreUnavailable = errors.New("local store unavailable")
)
