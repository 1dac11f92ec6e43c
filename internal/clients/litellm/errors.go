package litellm

import "fmt"

// HTTPError is a non-2xx reply from the completion gateway.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("litellm http %d: %s", e.StatusCode, e.Body)
}
