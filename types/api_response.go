package types

import "time"

// StandardResponse wraps successful staff API payloads.
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
	Count     *int      `json:"count,omitempty"`
}

// ErrorResponse documents the body written by the error middleware.
type ErrorResponse struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SubmitFeedbackResponse is returned when a draft is accepted.
type SubmitFeedbackResponse struct {
	Message  string    `json:"message"`
	Feedback *Feedback `json:"feedback"`
}
