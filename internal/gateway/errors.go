package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxBodyInError caps how much of a response body is quoted in Error().
const maxBodyInError = 512

// GatewayError reports a failed gateway call. Status is zero when no
// response was received.
type GatewayError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gateway: %s", e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		if len(body) > maxBodyInError {
			body = body[:maxBodyInError] + "..."
		}
		fmt.Fprintf(&b, ": %s", body)
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr) && gwErr.Status == http.StatusNotFound
}
