package core

import "errors"

// Domain errors. Handlers map them to HTTP statuses; MapError maps them to
// user messages. Wrap with fmt.Errorf("...: %w") to add detail.
var (
	// ErrMissingFields is returned when name, code or image_data is absent.
	ErrMissingFields = errors.New("missing required fields")

	// ErrMalformedBatch is returned when a bulk request has no certificate list.
	ErrMalformedBatch = errors.New("missing certificate list")

	// ErrDuplicateCode is returned when the code is already stored.
	ErrDuplicateCode = errors.New("certificate code already exists")

	// ErrNotFound is returned when no certificate matches a code.
	ErrNotFound = errors.New("certificate not found")

	// ErrBatchTooLarge is returned when a bulk request exceeds the item limit.
	ErrBatchTooLarge = errors.New("certificate batch too large")

	// ErrPayloadTooLarge is returned when a request body exceeds the size limit.
	ErrPayloadTooLarge = errors.New("request body too large")
)
