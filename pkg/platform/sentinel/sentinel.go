package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, the local agent, and
// render views return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record, connection, view, or node does not exist
// - ErrInvalidState: credential record in wrong state for requested operation
// - ErrUnavailable: agent or store temporarily unavailable
//
// For validation errors (bad payloads, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
