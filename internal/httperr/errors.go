// Package httperr defines the closed set of failure kinds the API can
// return and the middleware that translates them into JSON responses.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error with one of the fixed failure categories.
type Kind string

const (
	KindValidation       Kind = "ValidationError"
	KindBadRequest       Kind = "BadRequestError"
	KindUnauthorized     Kind = "UnauthorizedError"
	KindAuthentication   Kind = "AuthenticationError"
	KindAuthorization    Kind = "AuthorizationError"
	KindPasswordMismatch Kind = "PasswordMismatchError"
	KindInvalidToken     Kind = "InvalidTokenError"
	KindNotFound         Kind = "NotFoundError"
	KindTokenIssuance    Kind = "TokenIssuanceError"
	KindInternal         Kind = "InternalError"
)

type definition struct {
	status  int
	message string
	details string
}

// definitions is the closed taxonomy. Every Kind must have an entry here;
// Status() and the constructors panic on an unknown kind rather than
// silently inventing a category.
var definitions = map[Kind]definition{
	KindValidation: {
		status:  http.StatusBadRequest,
		message: "Validation failed",
		details: "Request data did not pass validation.",
	},
	KindBadRequest: {
		status:  http.StatusBadRequest,
		message: "Bad request",
		details: "The request could not be understood or was missing required parameters.",
	},
	KindUnauthorized: {
		status:  http.StatusUnauthorized,
		message: "Unauthorized access",
		details: "You do not have permission to access this resource.",
	},
	KindAuthentication: {
		status:  http.StatusForbidden,
		message: "Authentication failed",
		details: "You must be authenticated to access this resource.",
	},
	KindAuthorization: {
		status:  http.StatusForbidden,
		message: "Authorization failed",
		details: "You are not allowed to perform this action.",
	},
	KindPasswordMismatch: {
		status:  http.StatusForbidden,
		message: "Password mismatch",
		details: "The provided password does not match.",
	},
	KindInvalidToken: {
		status:  http.StatusForbidden,
		message: "Invalid or expired token",
		details: "The provided token is invalid or has expired.",
	},
	KindNotFound: {
		status:  http.StatusNotFound,
		message: "Resource not found",
		details: "The requested resource could not be found.",
	},
	KindTokenIssuance: {
		status:  http.StatusInternalServerError,
		message: "Failed to generate token",
		details: "An error occurred while generating the authentication token.",
	},
	KindInternal: {
		status:  http.StatusInternalServerError,
		message: "Internal server error",
		details: "An unexpected error occurred on the server.",
	},
}

// Error is a tagged failure carrying the HTTP status and user-facing
// messages for its kind. It is created at the point of failure and
// travels unchanged to the response boundary.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error. The cause is logged at the
// translation boundary but never sent to the client.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// New creates an error of the given kind. An empty message selects the
// kind's default message.
func New(kind Kind, message string) *Error {
	def, ok := definitions[kind]
	if !ok {
		panic(fmt.Sprintf("httperr: unknown error kind %q", kind))
	}
	if message == "" {
		message = def.message
	}
	return &Error{
		Kind:    kind,
		Status:  def.status,
		Message: message,
		Details: def.details,
	}
}

func Validation(message string) *Error       { return New(KindValidation, message) }
func BadRequest(message string) *Error       { return New(KindBadRequest, message) }
func Unauthorized(message string) *Error     { return New(KindUnauthorized, message) }
func Authentication(message string) *Error   { return New(KindAuthentication, message) }
func Authorization(message string) *Error    { return New(KindAuthorization, message) }
func PasswordMismatch(message string) *Error { return New(KindPasswordMismatch, message) }
func InvalidToken(message string) *Error     { return New(KindInvalidToken, message) }
func NotFound(message string) *Error         { return New(KindNotFound, message) }
func TokenIssuance(message string) *Error    { return New(KindTokenIssuance, message) }
func Internal(message string) *Error         { return New(KindInternal, message) }

// From coerces an arbitrary error into a taxonomy error. Errors that are
// already tagged pass through unchanged; anything else becomes an
// InternalError wrapping the original.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred.").WithCause(err)
}

// IsKind reports whether err carries the given taxonomy kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
