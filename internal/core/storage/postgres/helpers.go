package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// marshalEventJSON marshals an event's payload and metadata to JSON.
// Nil maps produce nil (SQL NULL) rather than the JSON "null" string.
func marshalEventJSON(event *v1.TraceEvent) (payloadJSON, metadataJSON []byte, err error) {
	if len(event.Payload) > 0 {
		payloadJSON, err = json.Marshal(event.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	if len(event.Metadata) > 0 {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	return payloadJSON, metadataJSON, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans one trace_events row into a TraceEvent, decoding
// JSON columns and lifting nullable columns into their Go shapes.
// Compatible with both sql.Row and sql.Rows.
func scanEventRow(row scanner) (*v1.TraceEvent, error) {
	var (
		evt            v1.TraceEvent
		provider       sql.NullString
		httpMethod     sql.NullString
		httpURL        sql.NullString
		httpStatusCode sql.NullInt64
		responseTimeMs sql.NullInt64
		payloadJSON    []byte
		metadataJSON   []byte
		kind           string
		direction      string
	)

	err := row.Scan(
		&evt.ID,
		&evt.PaymentID,
		&provider,
		&evt.CorrelationID,
		&kind,
		&direction,
		&payloadJSON,
		&metadataJSON,
		&httpMethod,
		&httpURL,
		&httpStatusCode,
		&responseTimeMs,
		&evt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan trace event row: %w", err)
	}

	evt.EventKind = v1.Kind(kind)
	evt.Direction = v1.Direction(direction)
	evt.Provider = provider.String
	evt.HTTPMethod = httpMethod.String
	evt.HTTPURL = httpURL.String
	if httpStatusCode.Valid {
		code := int(httpStatusCode.Int64)
		evt.HTTPStatusCode = &code
	}
	if responseTimeMs.Valid {
		ms := responseTimeMs.Int64
		evt.ResponseTimeMs = &ms
	}

	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &evt.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &evt.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &evt, nil
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
