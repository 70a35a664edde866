/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
and in responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed
	// (missing or empty required field).
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained trailing
	// content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRateLimitExceeded indicates that the request rate exceeded the limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Connection and Message Business Logic Errors
const (
	// ErrDuplicateConnection indicates that the client id already holds a live
	// connection; the new admission attempt is rejected and the existing
	// connection is unaffected.
	ErrDuplicateConnection = 2101

	// ErrUnknownClient indicates that a submitted client id resolves to no
	// known identity, live or session-held.
	ErrUnknownClient = 2102

	// ErrMessageTooLong indicates that the message content exceeded the
	// configured maximum length.
	ErrMessageTooLong = 2201
)

// 3xxx: Identity and Session Errors
const (
	// ErrIdentityExhausted indicates that the username space could not yield a
	// free name within the bounded number of attempts. Systemic, not retried.
	ErrIdentityExhausted = 3001

	// ErrSessionInvalid indicates a session token that failed verification.
	ErrSessionInvalid = 3002

	// ErrSessionExpired indicates a session token whose identity is no longer held.
	ErrSessionExpired = 3003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
