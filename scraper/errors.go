package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies fetch failures for logging and metrics labels.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTimeout
	KindConnection
	KindForbidden
	KindNotFound
	KindRateLimited
	KindHTTP
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindHTTP:
		return "http"
	default:
		return "other"
	}
}

// FetchError wraps a page or item fetch failure with its classification.
type FetchError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyFetch wraps err with the kind derived from the error chain and,
// when known, the HTTP status code.
func classifyFetch(url string, err error, statusCode int) *FetchError {
	return &FetchError{
		Kind: classify(err, statusCode),
		URL:  url,
		Err:  err,
	}
}

func classify(err error, statusCode int) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	switch statusCode {
	case 0:
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		if statusCode >= http.StatusBadRequest {
			return KindHTTP
		}
	}

	return KindOther
}
