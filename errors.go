package jobs

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeClientError          = "CLIENT_ERROR"
	TextCodeConflict             = "CONFLICT"
	TextCodeServerError          = "SERVER_ERROR"
	TextCodeNotFound             = "NOT_FOUND"
	TextCodeNotImplemented       = "NOT_IMPLEMENTED"
	TextCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	TextCodeWeakCredential       = "WEAK_CREDENTIAL"
	TextCodeInvalidTransition    = "INVALID_TRANSITION"
	TextCodeMalformedToken       = "MALFORMED_TOKEN"
	TextCodeMissingSubject       = "MISSING_TOKEN_SUBJECT"
	TextCodeInvalidLookup        = "INVALID_LOOKUP"
)

// ErrWeakCredential is returned when a plaintext password fails the password policy.
var ErrWeakCredential = goerrors.New("invalid password: must be at least 16 characters and contain upper and lower case letters, a digit and a symbol", goerrors.CategoryValidation).
	WithTextCode(TextCodeWeakCredential).
	WithCode(goerrors.CodeBadRequest)

// ErrMalformedToken is returned when a bearer token cannot be decoded, has an
// invalid signature or is expired.
var ErrMalformedToken = goerrors.New("malformed or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeMalformedToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingSubject is returned when a token decodes but carries no subject.
var ErrMissingSubject = goerrors.New("no subject found in token", goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingSubject).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthenticationFailed is the single outcome for every failed authentication.
// It never tells the caller whether the identity or the credential was wrong.
var ErrAuthenticationFailed = goerrors.New("failure to authenticate", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthenticationFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrorKind is the closed set of outcomes a service operation may fail with.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindClient         ErrorKind = "client"
	KindConflict       ErrorKind = "conflict"
	KindServer         ErrorKind = "server"
	KindNotFound       ErrorKind = "not_found"
	KindAuthentication ErrorKind = "authentication"
	KindNotImplemented ErrorKind = "not_implemented"
)

func (k ErrorKind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}

// KindOf classifies err. Errors that did not go through the taxonomy are
// reported as server errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return KindServer
	}

	if rich.TextCode == TextCodeNotImplemented {
		return KindNotImplemented
	}

	switch rich.Category {
	case goerrors.CategoryConflict:
		return KindConflict
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return KindClient
	case goerrors.CategoryNotFound:
		return KindNotFound
	case goerrors.CategoryAuth:
		return KindAuthentication
	default:
		return KindServer
	}
}

// IsClientError reports whether err is the caller's fault. Conflicts are a
// specialization of client errors.
func IsClientError(err error) bool {
	k := KindOf(err)
	return k == KindClient || k == KindConflict
}

// IsConflictError reports whether err is a uniqueness violation.
func IsConflictError(err error) bool { return KindOf(err) == KindConflict }

// IsNotFoundError reports whether err signals a missing entity.
func IsNotFoundError(err error) bool { return KindOf(err) == KindNotFound }

// IsServerError reports whether err is a store or internal failure.
func IsServerError(err error) bool { return KindOf(err) == KindServer }

// IsAuthenticationError reports whether err is an authentication denial.
func IsAuthenticationError(err error) bool { return KindOf(err) == KindAuthentication }

// IsNotImplementedError reports whether err comes from a stubbed operation.
func IsNotImplementedError(err error) bool { return KindOf(err) == KindNotImplemented }

// TextCodeOf returns the text code attached to err, if any.
func TextCodeOf(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

var taxonomyTextCodes = map[string]struct{}{
	TextCodeClientError:          {},
	TextCodeConflict:             {},
	TextCodeServerError:          {},
	TextCodeNotFound:             {},
	TextCodeNotImplemented:       {},
	TextCodeAuthenticationFailed: {},
	TextCodeWeakCredential:       {},
	TextCodeInvalidTransition:    {},
	TextCodeMalformedToken:       {},
	TextCodeMissingSubject:       {},
	TextCodeInvalidLookup:        {},
}

// isTaxonomyError reports whether err was already mapped by this package.
// Errors carrying foreign text codes still go through classification.
func isTaxonomyError(err error) bool {
	_, ok := taxonomyTextCodes[TextCodeOf(err)]
	return ok
}

func newClientError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(TextCodeClientError).
		WithCode(goerrors.CodeBadRequest)
}

func newNotFoundError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithTextCode(TextCodeNotFound).
		WithCode(goerrors.CodeNotFound)
}

func newNotImplementedError(operation string) *goerrors.Error {
	return goerrors.New(operation+" not implemented", goerrors.CategoryOperation).
		WithTextCode(TextCodeNotImplemented)
}

func newAuthenticationError() *goerrors.Error {
	return goerrors.New(ErrAuthenticationFailed.Message, goerrors.CategoryAuth).
		WithTextCode(TextCodeAuthenticationFailed).
		WithCode(goerrors.CodeUnauthorized)
}

// asDomainError maps subsystem local errors onto the taxonomy. It returns nil
// when err is not one of them.
func asDomainError(err error) error {
	var transitionErr *TransitionError
	switch {
	case errors.Is(err, ErrWeakCredential):
		return goerrors.Wrap(err, goerrors.CategoryValidation, ErrWeakCredential.Message).
			WithTextCode(TextCodeWeakCredential).
			WithCode(goerrors.CodeBadRequest)
	case errors.As(err, &transitionErr):
		return goerrors.Wrap(err, goerrors.CategoryValidation, transitionErr.Error()).
			WithTextCode(TextCodeInvalidTransition).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{
				"entity":  transitionErr.Entity,
				"trigger": string(transitionErr.Trigger),
				"from":    transitionErr.From,
				"to":      transitionErr.To,
			})
	}
	return nil
}
