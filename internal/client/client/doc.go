// Package client is the API gateway of the langcrowd terminal client.
//
// # Overview
//
// Gateway talks REST/JSON to the platform backend under a versioned base
// path. Every request passes through the request interceptors; the built-in
// one attaches "Authorization: Token <token>" read fresh from the
// TokenSource, except on the login endpoint. Every response is logged at
// debug level.
//
// A 401 on any call other than login invokes the UnauthorizedHandler with the
// token the request carried, and the caller receives ErrUnauthorized. The
// application wires the handler to expire the session when that token is
// still the current one and to force navigation to the login view. Calls
// made under WithToken never invoke the handler.
//
// # Error Handling
//
// Failures map to sentinel errors matched with errors.Is: ErrUnauthorized,
// ErrForbidden, ErrNotFound, ErrUnavailable and ErrInvalidCredentials. Other
// HTTP failures surface as *APIError carrying the status, the detail message
// and any per-field messages. IsFallbackEligible tells the mutation services
// which failures allow a local-first change.
//
// Reads are retried on ErrUnavailable; mutations are never retried here.
//
// See Also
//
//   - Sub-APIs: Auth, Users, Languages, Roles, System
//   - Errors:   APIError, IsFallbackEligible
package client
