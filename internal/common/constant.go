// Package common contains shared constants and sentinel errors used across
// langcrowd components.
package common

// AuthorizationHeaderName is the HTTP header carrying the session credential
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// AuthScheme prefixes the token in the Authorization header. One scheme is
// used for every request.
const AuthScheme = "Token"

// Durable storage keys. SessionStorageKey holds the whole persisted session;
// LegacyTokenStorageKey is only ever deleted, never written. MirrorOwnerKey
// names the user whose changes the local mirror holds.
const (
	SessionStorageKey     = "auth-storage"
	LegacyTokenStorageKey = "auth-token"
	MirrorOwnerKey        = "mirror-owner"
)

// Validation limits shared by the client-side forms and the stub backend.
const (
	MinPasswordLength    = 8
	MinUsernameLength    = 3
	MaxBioLength         = 500
	MaxDescriptionLength = 1000
)
