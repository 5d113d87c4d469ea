package blog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSlug is returned when a single-post fetch is requested without an
	// identifier. No request is issued.
	ErrNoSlug = errors.New("post slug is empty")

	// ErrStale is returned by views when a response arrived for a target the
	// view no longer shows.
	ErrStale = errors.New("response discarded: view target changed")
)

type FetchErrorKind string

const (
	KindHTTPStatus            FetchErrorKind = "http_status"
	KindUnexpectedContentType FetchErrorKind = "unexpected_content_type"
	KindMalformedBody         FetchErrorKind = "malformed_body"
	KindMissingField          FetchErrorKind = "missing_field"
	KindNetwork               FetchErrorKind = "network"
)

const snippetLength = 200

// FetchError classifies a failed API request. Every failure is terminal for
// the call that produced it.
type FetchError struct {
	Kind        FetchErrorKind
	URL         string
	Status      int
	ContentType string
	Field       string
	Snippet     string
	Err         error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("request to %s failed with HTTP status %d", e.URL, e.Status)
	case KindUnexpectedContentType:
		return fmt.Sprintf("expected JSON from %s but got %q: %s", e.URL, e.ContentType, e.Snippet)
	case KindMalformedBody:
		return fmt.Sprintf("malformed JSON from %s: %v", e.URL, e.Err)
	case KindMissingField:
		return fmt.Sprintf("response from %s has no %q field", e.URL, e.Field)
	case KindNetwork:
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("request to %s failed", e.URL)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *FetchError of the given kind.
func IsKind(err error, kind FetchErrorKind) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Kind == kind
}

// SchemaError is returned when a payload lacks a field no default can stand in for.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("post is missing required field %q", e.Field)
}

func snippet(body []byte) string {
	runes := []rune(strings.Join(strings.Fields(string(body)), " "))
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + "..."
	}
	return string(runes)
}
