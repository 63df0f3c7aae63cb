package service

import "errors"

// Kind classifies a domain failure so HTTP handlers can map it to a status
// code without matching on message text.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
)

// Stable codes for the recoverable auth failures.
const (
	CodeUsernameTaken            = "USERNAME_TAKEN"
	CodeEmailTaken               = "EMAIL_TAKEN"
	CodeInvalidCredentials       = "INVALID_CREDENTIALS"
	CodeAccountDeactivated       = "ACCOUNT_DEACTIVATED"
	CodeUserNotFound             = "USER_NOT_FOUND"
	CodeCurrentPasswordIncorrect = "CURRENT_PASSWORD_INCORRECT"
)

// Error is a tagged domain failure. Expected outcomes (duplicate account, bad
// password) and infrastructure failures travel through the same channel but
// carry distinct kinds.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

func validationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func conflictError(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func authenticationError(code, message string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: message}
}

func authorizationError(code, message string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: message}
}

func notFoundError(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func internalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: message, cause: cause}
}
