package ai

import "fmt"

// ConfigurationError means a required credential is missing. It is returned
// before any network attempt and is fatal for the run.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Missing)
}

// UpstreamError means the model backend returned a non-success status or the
// call timed out. Status is 0 when no HTTP response was received.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("ai call failed: %s", e.Body)
	}
	return fmt.Sprintf("ai call failed (%d): %s", e.Status, e.Body)
}

// MalformedResponseError means the model's reply could not be decoded as the
// requested structured shape even after fence stripping.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed ai response: %s", e.Reason)
}
