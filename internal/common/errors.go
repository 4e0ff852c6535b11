package common

import "errors"

// Sentinel errors shared by the client layers. Match them with errors.Is.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Session errors.
	ErrorNotAuthenticated = errors.New("not authenticated")

	// Authorization errors raised before any network call.
	ErrorForbidden = errors.New("forbidden")
)
