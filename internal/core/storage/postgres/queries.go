package postgres

// SQL statements for the append-only trace event store.

const (
	// queryInsertEvent appends one event. RETURNING hands back the
	// storage-assigned id and created_at so the synchronous recording
	// path can return a fully materialized event.
	queryInsertEvent = `
		INSERT INTO trace_events (
			payment_id, provider, correlation_id, event_kind, direction,
			payload, metadata, http_method, http_url, http_status_code,
			response_time_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	// queryListEventsByPayment fetches one payment's full timeline in
	// the (created_at, id) total order.
	queryListEventsByPayment = `
		SELECT
			id, payment_id, provider, correlation_id, event_kind,
			direction, payload, metadata, http_method, http_url,
			http_status_code, response_time_ms, created_at
		FROM trace_events
		WHERE payment_id = $1
		ORDER BY created_at ASC, id ASC
	`

	// queryDeleteEventsChunk deletes at most one chunk of events older
	// than the cutoff. The retention pruner loops it until no rows are
	// affected, keeping individual delete transactions short.
	queryDeleteEventsChunk = `
		DELETE FROM trace_events
		WHERE id IN (
			SELECT id FROM trace_events
			WHERE created_at < $1
			LIMIT $2
		)
	`
)
