package services

import "fmt"

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// UpstreamError is a failed call to the model API. Status is 0 when no HTTP
// status was available (transport failure, gRPC without an HTTP mapping).
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Gemini API error: %d - %s", e.Status, e.Body)
}

type MalformedResponseError struct{ Reason string }

func (e *MalformedResponseError) Error() string {
	return "Unexpected response structure from Gemini: " + e.Reason
}
