package fetch

import "errors"

// Precondition failures, checked in order before any network call.
var (
	ErrMissingAPIKey      = errors.New("API key is missing: set the GUARDIAN_API_KEY environment variable")
	ErrEmptySearchTerm    = errors.New("search term cannot be empty")
	ErrMissingQueueTarget = errors.New("queue target is missing: set the RABBIT_ROUTING_KEY environment variable")
)
