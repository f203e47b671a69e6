package v1

import (
	"fmt"
	"time"
)

// TraceEvent is one recorded step in a payment's lifecycle.
// Events are immutable once persisted: the store only ever appends,
// and a payment's timeline is its events ordered by (CreatedAt, ID).
type TraceEvent struct {
	// ID is assigned by storage (BIGSERIAL) and breaks ties between
	// events that share a CreatedAt.
	ID int64 `json:"id"`

	// PaymentID identifies the transaction this event belongs to.
	// Required for every event.
	PaymentID string `json:"payment_id"`

	// Provider names the external payment processor this event
	// concerns, when there is one.
	Provider string `json:"provider,omitempty"`

	// CorrelationID groups events belonging to one logical
	// request/response exchange or broader flow. Generated when the
	// caller does not supply one.
	CorrelationID string `json:"correlation_id"`

	EventKind Kind      `json:"event_kind"`
	Direction Direction `json:"direction"`

	// Payload is arbitrary caller data, redacted before persistence.
	Payload map[string]interface{} `json:"payload,omitempty"`

	// Metadata is side-channel context (e.g. sanitized headers).
	// Treated as already sanitized by the caller; not redacted.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// HTTP fields are populated only for request/response-shaped events.
	HTTPMethod     string `json:"http_method,omitempty"`
	HTTPURL        string `json:"http_url,omitempty"`
	HTTPStatusCode *int   `json:"http_status_code,omitempty"`
	ResponseTimeMs *int64 `json:"response_time_ms,omitempty"`

	// CreatedAt is assigned by storage at persistence time.
	CreatedAt time.Time `json:"created_at"`
}

// RecordRequest is the raw submission a caller hands to the Recorder.
// The normalizer turns it into a canonical TraceEvent.
type RecordRequest struct {
	PaymentID     string                 `json:"payment_id"`
	Event         string                 `json:"event"`
	Provider      string                 `json:"provider,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Direction     string                 `json:"direction,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`

	HTTPMethod     string `json:"http_method,omitempty"`
	HTTPURL        string `json:"http_url,omitempty"`
	HTTPStatusCode *int   `json:"http_status_code,omitempty"`
	ResponseTimeMs *int64 `json:"response_time_ms,omitempty"`
}

// Validate ensures the submission carries its required attributes.
func (r *RecordRequest) Validate() error {
	if r.PaymentID == "" {
		return fmt.Errorf("payment_id is required")
	}
	return nil
}
