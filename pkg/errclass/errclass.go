// Package errclass converts heterogeneous failure causes (network errors,
// timeouts, HTTP statuses, malformed payloads) into a closed taxonomy with a
// retryability verdict. The sync engine never inspects raw transport errors
// directly; everything funnels through Classify so that retry and fallback
// decisions stay in one place.
// No external dependencies - uses only standard library.
package errclass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
)

// Kind is the classification of a failure cause.
type Kind int

const (
	// KindUnknown is anything that matches no other rule.
	KindUnknown Kind = iota
	// KindNetwork is a connectivity-layer failure (DNS, refused, reset).
	KindNetwork
	// KindTimeout is a deadline exceeded, either context or transport.
	KindTimeout
	// KindClient is an HTTP 4xx other than 401.
	KindClient
	// KindServer is an HTTP 5xx.
	KindServer
	// KindAuth is an HTTP 401, always, regardless of body.
	KindAuth
	// KindParsing is a malformed or undecodable response body.
	KindParsing
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindAuth:
		return "auth"
	case KindParsing:
		return "parsing"
	default:
		return "unknown"
	}
}

// Retryable reports whether errors of this kind are worth retrying.
// Client errors, auth failures and malformed payloads indicate a request
// that will never succeed unmodified, so they fail fast instead.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindServer:
		return true
	default:
		return false
	}
}

// StatusError carries an HTTP status that could not be handled.
// The remote client returns one for every non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ParseError marks a response body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Classified is an error annotated with its taxonomy kind.
type Classified struct {
	Kind   Kind
	Status int // HTTP status when Kind is client, server or auth; 0 otherwise
	Err    error
}

func (c *Classified) Error() string {
	return fmt.Sprintf("%s: %v", c.Kind, c.Err)
}

func (c *Classified) Unwrap() error {
	return c.Err
}

// Classify maps any failure cause to exactly one Kind.
//
// Rules, in priority order:
//  1. connectivity-layer failure -> network
//  2. deadline exceeded -> timeout
//  3. HTTP 401 -> auth (always, regardless of body)
//  4. HTTP 400-499 (excluding 401) -> client
//  5. HTTP 500-599 -> server
//  6. malformed/undecodable response body -> parsing
//  7. anything else -> unknown
//
// Classify is idempotent: an already-classified error keeps its kind.
func Classify(err error) *Classified {
	if err == nil {
		return nil
	}

	var classified *Classified
	if errors.As(err, &classified) {
		return classified
	}

	// Transport-level failures. A net.Error that timed out counts as a
	// timeout, everything else on the wire is a network failure.
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Classified{Kind: KindTimeout, Err: err}
		}
		return &Classified{Kind: KindNetwork, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Classified{Kind: KindTimeout, Err: err}
		}
		return &Classified{Kind: KindNetwork, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Classified{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Classified{Kind: KindNetwork, Err: err}
	}

	// HTTP status responses.
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode, err)
	}

	// Undecodable payloads.
	var parseErr *ParseError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &parseErr) || errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Classified{Kind: KindParsing, Err: err}
	}

	return &Classified{Kind: KindUnknown, Err: err}
}

// classifyStatus maps an HTTP status code to a kind.
func classifyStatus(status int, err error) *Classified {
	switch {
	case status == 401:
		return &Classified{Kind: KindAuth, Status: status, Err: err}
	case status >= 400 && status <= 499:
		return &Classified{Kind: KindClient, Status: status, Err: err}
	case status >= 500 && status <= 599:
		return &Classified{Kind: KindServer, Status: status, Err: err}
	default:
		return &Classified{Kind: KindUnknown, Status: status, Err: err}
	}
}

// KindOf returns the taxonomy kind of an error.
func KindOf(err error) Kind {
	c := Classify(err)
	if c == nil {
		return KindUnknown
	}
	return c.Kind
}

// IsRetryable reports whether the error is worth retrying, per the taxonomy.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// IsAuth reports whether the error classifies as an authentication failure.
// A 401 forces an immediate fallback to local-only mode regardless of any
// retry budget, so callers check this before consulting IsRetryable.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
