package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// AppError is a domain error carrying a stable machine code.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError builds an AppError of the given kind.
func NewError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *AppError {
	return NewError(KindValidation, code, message)
}

func NotFound(code, message string) *AppError {
	return NewError(KindNotFound, code, message)
}

func Forbidden(code, message string) *AppError {
	return NewError(KindForbidden, code, message)
}

func Conflict(code, message string) *AppError {
	return NewError(KindConflict, code, message)
}

// Internal wraps an unexpected failure. Passing an AppError returns it unchanged.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "internal server error", Err: err}
}

// AsAppError extracts an AppError from err.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; anything that is not an AppError is internal.
func KindOf(err error) ErrorKind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrRequiredFields   = Validation("REQUIRED_FIELDS_MISSING", "required fields are missing")
	ErrInvalidFileURL   = Validation("INVALID_FILE_URL", "file url does not reference an available upload")
	ErrInvalidFileType  = Validation("INVALID_FILE_TYPE", "unsupported file type")
	ErrFileTooLarge     = Validation("FILE_TOO_LARGE", "file exceeds the size limit")
	ErrInvalidCaptcha   = Validation("INVALID_CAPTCHA", "captcha verification failed")
	ErrEmailTaken       = Conflict("ALREADY_EXIST_EMAIL", "email already registered")
	ErrNicknameTaken    = Conflict("ALREADY_EXIST_NICKNAME", "nickname already taken")
	ErrAlreadyLiked     = Conflict("ALREADY_LIKED", "post already liked")
	ErrUserNotFound     = NotFound("USER_NOT_FOUND", "user not found")
	ErrPostNotFound     = NotFound("POST_NOT_FOUND", "post not found")
	ErrCommentNotFound  = NotFound("COMMENT_NOT_FOUND", "comment not found")
	ErrNotPostAuthor    = Forbidden("NOT_THE_AUTHOR", "only the author can modify this post")
	ErrNotCommentAuthor = Forbidden("NOT_THE_COMMENT_AUTHOR", "only the author can modify this comment")
	ErrNotAccountOwner  = Forbidden("PERMISSION_DENIED", "only the account owner can modify this account")
	ErrWrongPassword    = Forbidden("INVALID_CURRENT_PASSWORD", "current password does not match")
	ErrUnauthenticated  = NewError(KindUnauthenticated, "LOGIN_REQUIRED", "authentication required")
	ErrLoginFailed      = NewError(KindUnauthenticated, "LOGIN_FAILED", "invalid email or password")
	ErrTooManyAttempts  = NewError(KindRateLimited, "TOO_MANY_ATTEMPTS", "too many attempts, try again later")
)
