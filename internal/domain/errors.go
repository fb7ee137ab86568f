package domain

import "errors"

var (
	// ErrPayloadShape is returned when a response body is not the JSON
	// container the endpoint documents (array for orderbook, object for the rest).
	ErrPayloadShape = errors.New("unexpected payload shape")

	ErrMissingPrice  = errors.New("record has no last price")
	ErrZeroReference = errors.New("comparison price is zero")

	// ErrNotInitialized is returned by command endpoints while the backend boots.
	ErrNotInitialized = errors.New("backend not initialized")
)
