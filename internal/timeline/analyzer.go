package timeline

import (
	"fmt"
	"time"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// Severity captures an issue's or anomaly's impact level.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Issue type identifiers, in the fixed order Analyze evaluates them.
const (
	IssueProviderTimeout  = "provider_timeout"
	IssueDuplicateWebhook = "duplicate_webhook"
	IssueSlowResponse     = "slow_response"
	IssueMissingResponse  = "missing_response"
)

// Anomaly type identifiers.
const (
	AnomalyOrphanedRequest  = "orphaned_request"
	AnomalyExcessiveLatency = "excessive_latency"
)

// Issue is a structural problem derived from the timeline. Issues are
// ephemeral: recomputed on every call, never persisted.
type Issue struct {
	Type            string   `json:"type"`
	Severity        Severity `json:"severity"`
	Message         string   `json:"message"`
	RelatedEventIDs []int64  `json:"related_event_ids,omitempty"`
}

// Anomaly is a temporal problem found by correlation-aware pairing.
type Anomaly struct {
	Type            string     `json:"type"`
	Severity        Severity   `json:"severity"`
	CorrelationID   string     `json:"correlation_id"`
	Provider        string     `json:"provider,omitempty"`
	Message         string     `json:"message"`
	RequestEventID  int64      `json:"request_event_id,omitempty"`
	ResponseEventID int64      `json:"response_event_id,omitempty"`
	RequestAt       *time.Time `json:"request_at,omitempty"`
	LatencyMs       int64      `json:"latency_ms,omitempty"`
	ThresholdMs     int64      `json:"threshold_ms,omitempty"`
}

// Analyze runs the structural checks in a fixed order: provider
// timeouts, duplicate webhooks, slow responses, missing responses.
// The ordering is part of the contract. Each check is independent and
// aggregates all its occurrences into one issue.
func (d *DetailedTimeline) Analyze() []Issue {
	issues := []Issue{}

	if ids := d.eventIDsOfKind(v1.KindProviderTimeout); len(ids) > 0 {
		issues = append(issues, Issue{
			Type:            IssueProviderTimeout,
			Severity:        SeverityHigh,
			Message:         fmt.Sprintf("provider timed out %d time(s)", len(ids)),
			RelatedEventIDs: ids,
		})
	}

	if ids := d.eventIDsOfKind(v1.KindWebhookDuplicate); len(ids) > 0 {
		issues = append(issues, Issue{
			Type:            IssueDuplicateWebhook,
			Severity:        SeverityMedium,
			Message:         fmt.Sprintf("received %d duplicate webhook(s)", len(ids)),
			RelatedEventIDs: ids,
		})
	}

	if ids := d.slowResponseIDs(); len(ids) > 0 {
		issues = append(issues, Issue{
			Type:            IssueSlowResponse,
			Severity:        SeverityMedium,
			Message:         fmt.Sprintf("%d response(s) slower than %dms", len(ids), d.cfg.SlowResponseThresholdMs),
			RelatedEventIDs: ids,
		})
	}

	// Raw count comparison, deliberately without correlation pairing.
	// The correlation-aware orphan detector below is a separate signal.
	requests, responses := d.requestResponseCounts()
	if requests > responses {
		issues = append(issues, Issue{
			Type:     IssueMissingResponse,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%d request(s) sent but only %d response(s) recorded", requests, responses),
		})
	}

	return issues
}

// DetectAnomalies runs the correlation-aware checks: orphaned outbound
// requests, then excessive request/response latency. Incomplete
// correlation groups are silently skipped; analysis never fails the
// read path.
func (d *DetailedTimeline) DetectAnomalies() []Anomaly {
	anomalies := []Anomaly{}
	anomalies = append(anomalies, d.orphanedRequests()...)
	anomalies = append(anomalies, d.excessiveLatencies()...)
	return anomalies
}

func (d *DetailedTimeline) eventIDsOfKind(kind v1.Kind) []int64 {
	var ids []int64
	for _, evt := range d.events {
		if evt.EventKind == kind {
			ids = append(ids, evt.ID)
		}
	}
	return ids
}

func (d *DetailedTimeline) slowResponseIDs() []int64 {
	var ids []int64
	for _, evt := range d.events {
		if evt.ResponseTimeMs != nil && *evt.ResponseTimeMs > d.cfg.SlowResponseThresholdMs {
			ids = append(ids, evt.ID)
		}
	}
	return ids
}

func (d *DetailedTimeline) requestResponseCounts() (requests, responses int) {
	for _, evt := range d.events {
		switch {
		case evt.EventKind == v1.KindProviderRequestSent:
			requests++
		case evt.EventKind.IsProviderResponse():
			responses++
		}
	}
	return requests, responses
}

// orphanedRequests scans every outbound request for a response-shaped
// event sharing its correlation id at or after the request, within the
// configured window. The nested scan is O(requests x events) by design:
// per-payment event counts are tens, not millions, and correctness wins
// over asymptotics here.
func (d *DetailedTimeline) orphanedRequests() []Anomaly {
	var anomalies []Anomaly
	for _, req := range d.events {
		if req.EventKind != v1.KindProviderRequestSent {
			continue
		}

		matched := false
		for _, candidate := range d.events {
			if candidate.CorrelationID != req.CorrelationID {
				continue
			}
			if !isOrphanResponse(candidate.EventKind) {
				continue
			}
			if candidate.CreatedAt.Before(req.CreatedAt) {
				continue
			}
			if candidate.CreatedAt.Sub(req.CreatedAt) <= d.cfg.OrphanWindow {
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		requestAt := req.CreatedAt
		anomalies = append(anomalies, Anomaly{
			Type:           AnomalyOrphanedRequest,
			Severity:       SeverityHigh,
			CorrelationID:  req.CorrelationID,
			Provider:       req.Provider,
			RequestEventID: req.ID,
			RequestAt:      &requestAt,
			Message: fmt.Sprintf("outbound request at %s received no response within %s",
				requestAt.UTC().Format(time.RFC3339), d.cfg.OrphanWindow),
		})
	}
	return anomalies
}

// isOrphanResponse matches the response-shaped kinds the orphan check
// accepts. Unlike the latency check, it also accepts exceptions.
func isOrphanResponse(kind v1.Kind) bool {
	return kind.IsProviderResponse() || kind == v1.KindProviderException
}

// excessiveLatencies groups events by correlation id and measures the
// delta between the first outbound request and the first response-shaped
// event in each group. Groups missing either side are skipped.
func (d *DetailedTimeline) excessiveLatencies() []Anomaly {
	groups := map[string][]*v1.TraceEvent{}
	var order []string
	for _, evt := range d.events {
		if _, seen := groups[evt.CorrelationID]; !seen {
			order = append(order, evt.CorrelationID)
		}
		groups[evt.CorrelationID] = append(groups[evt.CorrelationID], evt)
	}

	var anomalies []Anomaly
	for _, correlationID := range order {
		var request, response *v1.TraceEvent
		for _, evt := range groups[correlationID] {
			if request == nil && evt.EventKind == v1.KindProviderRequestSent {
				request = evt
			}
			if response == nil && evt.EventKind.IsProviderResponse() {
				response = evt
			}
		}
		if request == nil || response == nil {
			continue
		}

		latencyMs := response.CreatedAt.Sub(request.CreatedAt).Milliseconds()
		if latencyMs <= d.cfg.LatencyThresholdMs {
			continue
		}

		anomalies = append(anomalies, Anomaly{
			Type:            AnomalyExcessiveLatency,
			Severity:        SeverityMedium,
			CorrelationID:   correlationID,
			Provider:        request.Provider,
			RequestEventID:  request.ID,
			ResponseEventID: response.ID,
			LatencyMs:       latencyMs,
			ThresholdMs:     d.cfg.LatencyThresholdMs,
			Message: fmt.Sprintf("request/response latency %dms exceeds threshold %dms",
				latencyMs, d.cfg.LatencyThresholdMs),
		})
	}
	return anomalies
}
