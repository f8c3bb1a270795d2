package reddit

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a feed failure.
type ErrorKind string

const (
	KindSubredditNotFound    ErrorKind = "subreddit_not_found"
	KindAccessForbidden      ErrorKind = "access_forbidden"
	KindUpstream             ErrorKind = "upstream_error"
	KindInvalidResponseShape ErrorKind = "invalid_response_shape"
	KindNoMediaFound         ErrorKind = "no_media_found"
	KindCancelled            ErrorKind = "cancelled"
)

// Soft reports whether the kind describes a valid feed without renderable
// content rather than a failed request.
func (k ErrorKind) Soft() bool {
	return k == KindNoMediaFound
}

// Error is a classified feed failure.
type Error struct {
	Kind       ErrorKind
	Subreddit  string
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error // origin, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSubredditNotFound:
		return withDetail(fmt.Sprintf("subreddit %q not found", e.Subreddit), e.Message)
	case KindAccessForbidden:
		return withDetail(fmt.Sprintf("access to %q is forbidden", e.Subreddit), e.Message)
	case KindInvalidResponseShape:
		return "invalid response format from Reddit API"
	case KindNoMediaFound:
		return fmt.Sprintf("no media posts found in %q", e.Subreddit)
	case KindCancelled:
		return "request cancelled"
	}

	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode == 0 && e.Err != nil {
		return "Reddit API unreachable: " + e.Err.Error()
	}
	return fmt.Sprintf("reddit API error (status %d)", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func withDetail(msg, detail string) string {
	if detail == "" {
		return msg
	}
	return msg + " (" + detail + ")"
}

// KindOf returns the kind of a classified error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsCancelled reports whether err is a caller cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// NoMediaFound reports a subreddit page that held no renderable posts.
func NoMediaFound(subreddit string) *Error {
	return &Error{Kind: KindNoMediaFound, Subreddit: subreddit}
}

func cancelled(err error) *Error {
	return &Error{Kind: KindCancelled, Err: err}
}

func invalidShape(err error) *Error {
	return &Error{Kind: KindInvalidResponseShape, Err: err}
}

// statusError maps a non-success response to the taxonomy. message is the
// upstream body message or reason, possibly empty.
func statusError(subreddit string, statusCode int, message string, retryAfter time.Duration) *Error {
	switch statusCode {
	case http.StatusNotFound:
		return &Error{Kind: KindSubredditNotFound, Subreddit: subreddit, StatusCode: statusCode, Message: message}
	case http.StatusForbidden:
		return &Error{Kind: KindAccessForbidden, Subreddit: subreddit, StatusCode: statusCode, Message: message}
	case http.StatusTooManyRequests:
		msg := "Reddit API rate limit exceeded - please try again later"
		if retryAfter > 0 {
			msg = fmt.Sprintf("Reddit API rate limit exceeded - retry in %s", retryAfter.Round(time.Second))
		}
		return &Error{Kind: KindUpstream, Subreddit: subreddit, StatusCode: statusCode, Message: msg, RetryAfter: retryAfter}
	}

	if message == "" {
		message = fmt.Sprintf("Error %d: %s", statusCode, http.StatusText(statusCode))
	}
	return &Error{Kind: KindUpstream, Subreddit: subreddit, StatusCode: statusCode, Message: message}
}
