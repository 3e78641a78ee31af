package model

import "errors"

// Custom errors for cart payload decoding.
// These stay inside the store boundary: a decode failure during hydration is
// absorbed as "empty cart", never surfaced to callers.
var (
	ErrUnknownKind = errors.New("cart item has unknown kind")
	ErrEmptyItem   = errors.New("cart item has no variant set")
)
