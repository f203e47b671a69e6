package timeline

import (
	"time"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// EventRecord is one event in the JSON projection.
type EventRecord struct {
	ID             int64                  `json:"id"`
	Timestamp      string                 `json:"timestamp"`
	EventKind      v1.Kind                `json:"event_kind"`
	Direction      v1.Direction           `json:"direction"`
	Provider       string                 `json:"provider,omitempty"`
	HTTPStatus     *int                   `json:"http_status,omitempty"`
	ResponseTimeMs *int64                 `json:"response_time_ms,omitempty"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
}

// Summary aggregates the timeline's headline numbers.
type Summary struct {
	TotalEvents int    `json:"total_events"`
	Errors      int    `json:"errors"`
	DurationMs  *int64 `json:"duration_ms"`
	Succeeded   bool   `json:"succeeded"`
	Failed      bool   `json:"failed"`
}

// Projection is the JSON shape of a timeline.
type Projection struct {
	PaymentID string        `json:"payment_id"`
	Events    []EventRecord `json:"events"`
	Summary   Summary       `json:"summary"`
}

// DetailedProjection adds the analysis output to the projection.
type DetailedProjection struct {
	Projection
	Issues    []Issue   `json:"issues"`
	Anomalies []Anomaly `json:"anomalies"`
}

// ToJSON builds the timeline's JSON projection.
func (t *Timeline) ToJSON() *Projection {
	events := make([]EventRecord, 0, len(t.events))
	for _, evt := range t.events {
		events = append(events, EventRecord{
			ID:             evt.ID,
			Timestamp:      evt.CreatedAt.UTC().Format(time.RFC3339Nano),
			EventKind:      evt.EventKind,
			Direction:      evt.Direction,
			Provider:       evt.Provider,
			HTTPStatus:     evt.HTTPStatusCode,
			ResponseTimeMs: evt.ResponseTimeMs,
			Payload:        evt.Payload,
		})
	}

	return &Projection{
		PaymentID: t.paymentID,
		Events:    events,
		Summary: Summary{
			TotalEvents: len(t.events),
			Errors:      len(t.Errors()),
			DurationMs:  t.Duration(),
			Succeeded:   t.Succeeded(),
			Failed:      t.Failed(),
		},
	}
}

// ToDetailedJSON builds the projection plus issues and anomalies.
func (d *DetailedTimeline) ToDetailedJSON() *DetailedProjection {
	return &DetailedProjection{
		Projection: *d.ToJSON(),
		Issues:     d.Analyze(),
		Anomalies:  d.DetectAnomalies(),
	}
}
