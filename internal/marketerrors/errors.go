package marketerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrCursorNotFound  = errors.New("no cursor saved for module")
)

// business logic errors
var (
	ErrInvalidListing = errors.New("invalid listing")
	ErrInvalidBid     = errors.New("invalid bid")
	ErrListingExpired = errors.New("listing has expired")
	ErrNoEndTime      = errors.New("listing has no end time")
	ErrInvalidQuery   = errors.New("invalid query parameter")
)

// indexer errors
var (
	ErrUnexpectedEventType = errors.New("invalid event module origin")
	ErrMissingObjectID     = errors.New("event carries no object id")
)
