/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status falls back to http.StatusOK when the error is constructed.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrFormParseFailed:      {Code: ErrFormParseFailed, Message: "Failed to process submitted data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Connection and Message Business Logic Errors
	ErrDuplicateConnection: {Code: ErrDuplicateConnection, Message: "This identity already has an active connection.", Status: http.StatusConflict},
	ErrUnknownClient:       {Code: ErrUnknownClient, Message: "Unknown client.", Status: http.StatusBadRequest},
	ErrMessageTooLong:      {Code: ErrMessageTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},

	// 3xxx: Identity and Session Errors
	ErrIdentityExhausted: {Code: ErrIdentityExhausted, Message: "No free username could be assigned. Please try again later.", Status: http.StatusServiceUnavailable},
	ErrSessionInvalid:    {Code: ErrSessionInvalid, Message: "Invalid session.", Status: http.StatusUnauthorized},
	ErrSessionExpired:    {Code: ErrSessionExpired, Message: "Session expired. Please request a new identity.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
