package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNetwork indicates the carrier page could not be reached or read
	ErrNetwork = errors.New("carrier page is unreachable")

	// ErrParse indicates the page did not contain a usable usage reading
	ErrParse = errors.New("carrier page could not be parsed")

	// ErrUnexpectedStatus indicates a non-200 response from the carrier
	ErrUnexpectedStatus = errors.New("unexpected status from carrier page")

	// ErrWidgetNotFound indicates the widget id is not registered
	ErrWidgetNotFound = errors.New("widget not found")

	// ErrInvalidWidgetID indicates a non-positive widget id
	ErrInvalidWidgetID = errors.New("invalid widget id")
)
