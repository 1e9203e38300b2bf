package domain

import "errors"

var (
	// ErrStoreUnavailable marks a transient backing-store failure.
	// Callers skip the current sweep pass and rely on the next
	// scheduled interval.
	ErrStoreUnavailable = errors.New("item store unavailable")

	// ErrStateConflict means a compare-and-set write lost: the stored
	// state no longer matched the expected prior state. Benign; the
	// winning pass already handled the item.
	ErrStateConflict = errors.New("item state conflict")

	ErrItemNotFound       = errors.New("tracked item not found")
	ErrRuleNotFound       = errors.New("sla rule not found")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrItemAlreadyTracked = errors.New("item already tracked")
)
