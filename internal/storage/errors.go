package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a storage failure independently of the backend SDK.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	KindInvalidInput
	KindTimeout
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInvalidInput:
		return "invalid_input"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is returned by every Store implementation.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Key != "" {
		msg += " " + e.Key
	}
	msg = fmt.Sprintf("%s [%s]", msg, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error.
func Wrap(kind Kind, op, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a missing bucket or object.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsPermissionDenied reports whether err is an access or credential failure.
func IsPermissionDenied(err error) bool { return KindOf(err) == KindPermissionDenied }

// ClassifyCode maps an S3 error code and HTTP status to a Kind. Both SDKs
// surface the same S3 protocol codes, so the drivers share this table.
func ClassifyCode(code string, status int) Kind {
	switch code {
	case "NoSuchBucket", "NoSuchKey", "NotFound":
		return KindNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden", "AllAccessDisabled":
		return KindPermissionDenied
	case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError", "InvalidArgument":
		return KindInvalidInput
	case "RequestTimeout", "SlowDown":
		return KindTimeout
	case "ServiceUnavailable", "InternalError":
		return KindUnavailable
	}
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindPermissionDenied
	case http.StatusBadRequest:
		return KindInvalidInput
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusInternalServerError:
		return KindUnavailable
	}
	return KindUnknown
}

// ContextKind returns KindTimeout for context errors and ok=false otherwise.
func ContextKind(err error) (Kind, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout, true
	}
	return KindUnknown, false
}
