package github

import (
	"errors"
	"fmt"

	gh "github.com/google/go-github/v82/github"
)

// ErrInvalidURL is returned when a string cannot be parsed as a GitHub
// pull request URL.
var ErrInvalidURL = errors.New("invalid GitHub pull request URL")

// APIError wraps a failed GitHub API call. StatusCode is zero for pure
// network failures where no HTTP response was received.
type APIError struct {
	StatusCode int
	Message    string
	err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("GitHub API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GitHub API error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// MissingFieldError indicates the API response lacked a field the report
// cannot be built without.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("GitHub response missing expected field %q", e.Field)
}

// apiError converts a go-github error into an *APIError, preserving the
// HTTP status when one exists.
func apiError(op string, err error) error {
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return fmt.Errorf("%s: %w", op, &APIError{
			StatusCode: er.Response.StatusCode,
			Message:    er.Message,
			err:        err,
		})
	}
	return fmt.Errorf("%s: %w", op, &APIError{Message: err.Error(), err: err})
}
