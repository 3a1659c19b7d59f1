package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: unique key already taken (username, codigo)
// - ErrNotOwner: the stored procedure refused the write because the acting
//   technician does not own the record
// - ErrInvalidState: entity in wrong state for the requested transition
// - ErrUnavailable: backing resource temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrNotOwner     = errors.New("not owner")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
