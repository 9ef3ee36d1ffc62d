package api

import (
	"errors"
	"net/http"
	"strings"
)

// RemoteError is a non-2xx response. Its message is the response body.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if strings.TrimSpace(e.Body) != "" {
		return e.Body
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

// IsRemote reports whether err came from a non-2xx response.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
