// Package http provides the HTTP implementation of youte.RequestExecutor
// against the provider's JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/youte"
)

// DefaultTimeout is the default timeout for a single API call.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds the response body read into memory.
const maxBodySize = 32 << 20

// Ensure Executor implements youte.RequestExecutor at compile time.
var _ youte.RequestExecutor = (*Executor)(nil)

// Executor performs one GET per cursor and classifies the outcome.
type Executor struct {
	client  *http.Client
	apiKey  string
	timeout time.Duration
	clock   youte.Clock
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout sets the timeout for API calls.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithHTTPClient replaces the underlying client. The timeout option is
// ignored when a client is supplied.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		e.client = c
	}
}

// WithClock sets the clock used to stamp pages.
func WithClock(c youte.Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// NewExecutor creates an Executor authenticating with apiKey.
func NewExecutor(apiKey string, opts ...Option) *Executor {
	e := &Executor{
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		clock:   youte.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = &http.Client{Timeout: e.timeout}
	}
	return e
}

// Execute issues the request described by spec at cursor.
//
// Any 2xx status is decoded as a list response. Failures are classified
// by code: ETRANSIENT for network errors, 5xx and rate limiting; EQUOTA
// when the provider reports the daily quota spent; ESKIPPED when the
// owning resource has comments disabled; EFATAL for any other rejection;
// EDECODE for a success body that is not a valid list response.
func (e *Executor) Execute(ctx context.Context, spec *youte.RequestSpec, cursor youte.PageCursor) (*youte.ResponsePage, error) {
	if e.apiKey == "" {
		return nil, youte.Errorf(youte.ECONFIG, "API key required")
	}

	query := spec.Query(cursor)
	query.Set("key", e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, youte.WrapError(youte.EINVALID, err, "build request for %s", spec.URL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.cursorError(youte.ETRANSIENT, cursor, err, "request %s: %s", spec.URL, networkReason(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, e.cursorError(youte.ETRANSIENT, cursor, err, "read response from %s", spec.URL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, e.classify(resp.StatusCode, body, spec, cursor)
	}

	decoded, err := youte.DecodeResponse(body)
	if err != nil {
		var yerr *youte.Error
		if errors.As(err, &yerr) {
			yerr.Cursor = &cursor
		}
		return nil, err
	}

	return &youte.ResponsePage{
		Body:        body,
		Response:    decoded,
		Cursor:      cursor,
		Spec:        spec,
		RetrievedAt: e.clock.Now(),
	}, nil
}

// Provider reasons that change how a failure is handled.
const (
	reasonQuotaExceeded      = "quotaExceeded"
	reasonDailyLimit         = "dailyLimitExceeded"
	reasonRateLimit          = "rateLimitExceeded"
	reasonUserRateLimit      = "userRateLimitExceeded"
	reasonCommentsDisabled   = "commentsDisabled"
	reasonBackendError       = "backendError"
	reasonInternalError      = "internalError"
	reasonServiceUnavailable = "serviceUnavailable"
)

func (e *Executor) classify(status int, body []byte, spec *youte.RequestSpec, cursor youte.PageCursor) error {
	pe, perr := youte.DecodeProviderError(body)
	if perr != nil {
		if status >= 500 || status == http.StatusTooManyRequests {
			return e.cursorError(youte.ETRANSIENT, cursor, nil, "HTTP %d from %s", status, spec.URL)
		}
		return e.cursorError(youte.EFATAL, cursor, perr, "HTTP %d from %s with unreadable error body", status, spec.URL)
	}

	reason := ""
	if len(pe.Error.Errors) > 0 {
		reason = pe.Error.Errors[0].Reason
	}
	message := pe.Error.Message
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	var yerr *youte.Error
	switch {
	case reason == reasonQuotaExceeded || reason == reasonDailyLimit:
		yerr = e.cursorError(youte.EQUOTA, cursor, nil, "%s", message)
	case reason == reasonCommentsDisabled:
		yerr = e.cursorError(youte.ESKIPPED, cursor, nil, "comments disabled for %s", ownerLabel(cursor))
	case reason == reasonRateLimit || reason == reasonUserRateLimit,
		reason == reasonBackendError || reason == reasonInternalError || reason == reasonServiceUnavailable,
		status >= 500, status == http.StatusTooManyRequests:
		yerr = e.cursorError(youte.ETRANSIENT, cursor, nil, "%s", message)
	default:
		yerr = e.cursorError(youte.EFATAL, cursor, nil, "%s", message)
	}
	yerr.Reason = reason
	return yerr
}

func (e *Executor) cursorError(code string, cursor youte.PageCursor, err error, format string, args ...any) *youte.Error {
	yerr := youte.WrapError(code, err, format, args...)
	yerr.Cursor = &cursor
	return yerr
}

func ownerLabel(cursor youte.PageCursor) string {
	if cursor.OwnerKey == "" {
		return "request"
	}
	return cursor.OwnerKey
}

func networkReason(err error) string {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
