package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// External collaborator errors: session provider, object storage, rate
// limiter, upstream origin fetches.
var (
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrAuthProvider       = errors.New("session provider error")
	ErrSignURL            = errors.New("failed to sign storage URL")
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrUploadRouteUnknown = errors.New("unknown upload route")
	ErrFileTooLarge       = errors.New("file exceeds route size cap")
	ErrUpstreamFetch      = errors.New("upstream fetch failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("timeout")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

func NewRateLimitError(limit int, window time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        ErrRateLimitExceeded,
		Details:    fmt.Sprintf("Limit of %d requests per %v exceeded", limit, window),
		Field:      "rate_limit",
	}
}

func NewAuthProviderError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrAuthProvider,
		Details:    "Session validation against the auth provider failed",
		Cause:      cause,
	}
}

func NewSignURLError(fileKey string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrSignURL,
		Details:    fmt.Sprintf("Could not sign URL for object %s", fileKey),
		Cause:      cause,
		Field:      "file_key",
	}
}

func NewStorageUnavailableError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrStorageUnavailable,
		Details:    "Object storage backend is unreachable",
		Cause:      cause,
	}
}

func NewUploadRouteUnknownError(route string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUploadRouteUnknown,
		Details:    fmt.Sprintf("Unknown upload route: %s", route),
		Field:      "route",
	}
}

func NewFileTooLargeError(route string, size, cap int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrFileTooLarge,
		Details:    fmt.Sprintf("File of %d bytes exceeds the %d byte cap for route %s", size, cap, route),
		Field:      "fileSize",
	}
}

func NewUpstreamFetchError(url string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrUpstreamFetch,
		Details:    fmt.Sprintf("Fetch from upstream %s failed", url),
		Cause:      cause,
	}
}

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Required configuration %s is not set", key),
		Field:      key,
	}
}

// Error Type Checkers
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

func IsAuthProviderError(err error) bool {
	return errors.Is(err, ErrAuthProvider)
}

func IsSignURLError(err error) bool {
	return errors.Is(err, ErrSignURL)
}

func IsFileTooLargeError(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

func IsUpstreamFetchError(err error) bool {
	return errors.Is(err, ErrUpstreamFetch)
}
