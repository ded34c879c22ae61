package mailman

import "fmt"

// StatusError is returned when the admin interface answers with a 4xx or 5xx.
type StatusError struct {
	Method     string
	Url        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Url, e.StatusCode)
}
