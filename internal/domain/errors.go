package domain

import "errors"

var (
	// ErrResponseNotList means the provider answered with something other
	// than a JSON array, usually because the request was too large.
	ErrResponseNotList = errors.New("incident response is not a list")

	// ErrTransport covers network failures and non-2xx provider responses.
	ErrTransport = errors.New("incident request failed")

	// ErrInvalidQuery rejects a date range or limit outside the allowed bounds.
	ErrInvalidQuery = errors.New("invalid incident query")

	// ErrQueryInFlight is returned when an update is requested while another
	// is still outstanding.
	ErrQueryInFlight = errors.New("incident query already in flight")

	// ErrUnknownCategory is returned when toggling a label that is not in the
	// current result set.
	ErrUnknownCategory = errors.New("unknown incident category")

	// ErrUnknownStyle is returned for map styles outside the offered set.
	ErrUnknownStyle = errors.New("unknown map style")

	// ErrNoSnapshot means no query has succeeded yet.
	ErrNoSnapshot = errors.New("no incident data loaded")
)
