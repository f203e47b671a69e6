package timeline

import (
	"fmt"
	"strings"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// timestampLayout renders event times with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func directionGlyph(d v1.Direction) string {
	switch d {
	case v1.DirectionOutbound:
		return "=>"
	case v1.DirectionInbound:
		return "<="
	default:
		return "--"
	}
}

// ToText renders the timeline as deterministic plain text: a header,
// one line per event with optional response-time/status sub-lines, and
// a summary block.
func (t *Timeline) ToText() string {
	var b strings.Builder

	header := fmt.Sprintf("Timeline for payment %s", t.paymentID)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(header)))
	b.WriteString("\n\n")

	for _, evt := range t.events {
		fmt.Fprintf(&b, "%s %s %s",
			evt.CreatedAt.UTC().Format(timestampLayout),
			directionGlyph(evt.Direction),
			evt.EventKind)
		if evt.Provider != "" {
			fmt.Fprintf(&b, " (%s)", evt.Provider)
		}
		b.WriteString("\n")
		if evt.ResponseTimeMs != nil {
			fmt.Fprintf(&b, "    response_time: %dms\n", *evt.ResponseTimeMs)
		}
		if evt.HTTPStatusCode != nil {
			fmt.Fprintf(&b, "    http_status: %d\n", *evt.HTTPStatusCode)
		}
	}

	b.WriteString("\nSummary\n-------\n")
	fmt.Fprintf(&b, "Total events: %d\n", len(t.events))
	fmt.Fprintf(&b, "Errors: %d\n", len(t.Errors()))
	if dur := t.Duration(); dur != nil {
		fmt.Fprintf(&b, "Duration: %dms\n", *dur)
	} else {
		b.WriteString("Duration: n/a\n")
	}
	if term := t.Terminal(); term != nil {
		fmt.Fprintf(&b, "Status: %s\n", term.EventKind)
	} else {
		b.WriteString("Status: incomplete\n")
	}

	return b.String()
}

// ToDetailedText appends the issue and anomaly blocks to ToText.
// Either block is omitted entirely when empty.
func (d *DetailedTimeline) ToDetailedText() string {
	var b strings.Builder
	b.WriteString(d.ToText())

	if issues := d.Analyze(); len(issues) > 0 {
		b.WriteString("\nIssues Detected\n---------------\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "[%s] %s: %s\n", issue.Severity, issue.Type, issue.Message)
		}
	}

	if anomalies := d.DetectAnomalies(); len(anomalies) > 0 {
		b.WriteString("\nAnomalies Detected\n------------------\n")
		for _, anomaly := range anomalies {
			fmt.Fprintf(&b, "[%s] %s (correlation %s): %s\n",
				anomaly.Severity, anomaly.Type, anomaly.CorrelationID, anomaly.Message)
		}
	}

	return b.String()
}
