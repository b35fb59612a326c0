package domain

import (
	"errors"
	"fmt"
)

// ErrConfigMissing is wrapped by adapters whose credentials are not configured.
// They return it before any network call is made.
var ErrConfigMissing = errors.New("configuration missing")

// UpstreamError describes a non-2xx answer from an external service.
type UpstreamError struct {
	Service string
	Status  int
	Code    string
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status=%d code=%s body=%s", e.Service, e.Status, e.Code, e.Body)
	}
	return fmt.Sprintf("%s: status=%d body=%s", e.Service, e.Status, e.Body)
}
