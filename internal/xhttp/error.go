package xhttp

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is returned by clients when the server answers with an
// unexpected status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the same request later can succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// CheckResponse returns a *StatusError unless resp carries one of the
// accepted statuses.
func CheckResponse(resp *http.Response, accepted ...int) error {
	for _, status := range accepted {
		if resp.StatusCode == status {
			return nil
		}
	}
	const maxBody = 512
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
