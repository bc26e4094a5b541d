package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe, user-facing summary
// - Meta: optional details (scope, reason, etc.)
// - Fields: per-field validation messages, rendered as the "errors" map
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err is a domain error carrying the given code.
func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "Invalid JSON body.", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", field+" is required"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", reason), map[string]string{
		"field": field,
	})
}

// ErrValidationFields carries a field -> message map; no partial effects are allowed
// once a caller receives it.
func ErrValidationFields(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "validation_failed",
		Message: "Validation failed.",
		Fields:  fields,
	}
}

func ErrCredentialsRequired() *Error {
	return New(KindValidation, "credentials_required", "Email and password are required.")
}

func ErrEntryLength(min, max int) *Error {
	return WithMeta(
		New(KindValidation, "entry_length", fmt.Sprintf("Entry must be between %d and %d characters.", min, max)),
		map[string]string{"field": "text"},
	)
}

// Token redemption failures on the email flows collapse to one message.
func ErrOneTimeTokenInvalid() *Error {
	return New(KindValidation, "token_invalid", "Invalid or expired token.")
}

func ErrOneTimeTokenSubject() *Error {
	return New(KindValidation, "token_subject_unknown", "Invalid token.")
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: use this for every login failure to avoid user enumeration.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "Invalid credentials.")
}

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "Authentication required. Please provide a valid token.")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "Session expired. Please log in again.")
}

func ErrTokenMalformed() *Error {
	return New(KindAuth, "token_malformed", "Invalid authentication token")
}

func ErrTokenSignatureInvalid() *Error {
	return New(KindAuth, "token_invalid_signature", "Authentication token signature is invalid")
}

func ErrUserGone() *Error {
	return New(KindAuth, "user_gone", "User no longer exists.")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrEmailNotVerified() *Error {
	return New(KindForbidden, "email_not_verified", "Please verify your email before logging in.")
}

func ErrVerificationRequired() *Error {
	return New(KindForbidden, "verification_required", "Please verify your email before accessing this resource.")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "No user with that email.")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "Email already registered. Please use a different email or log in.")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "Too many requests. Please try again later."), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrMailDispatch(cause error) *Error {
	return Wrap(KindInternal, "mail_dispatch_failed", "Could not send reset email. Please try again.", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
