package trace

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// ErrInvalidSubmission marks caller contract violations on a raw
// submission, e.g. a missing payment id. Checked with errors.Is.
var ErrInvalidSubmission = errors.New("invalid trace submission")

// Normalize turns a raw submission into a canonical event:
// the kind is always a resolvable enumeration member, the direction is
// always one of the three values, a correlation id always exists, and
// metadata is never nil. ID and CreatedAt stay zero; storage assigns
// them at persistence time.
//
// Normalization runs before redaction so the redactor only ever sees a
// complete, canonical payload.
func Normalize(req *v1.RecordRequest) (*v1.TraceEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubmission, err)
	}

	kind := v1.ResolveKind(req.Event)

	direction, ok := v1.ParseDirection(req.Direction)
	if !ok {
		direction = kind.InferredDirection()
	}

	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return &v1.TraceEvent{
		PaymentID:      req.PaymentID,
		Provider:       req.Provider,
		CorrelationID:  correlationID,
		EventKind:      kind,
		Direction:      direction,
		Payload:        req.Payload,
		Metadata:       metadata,
		HTTPMethod:     req.HTTPMethod,
		HTTPURL:        req.HTTPURL,
		HTTPStatusCode: req.HTTPStatusCode,
		ResponseTimeMs: req.ResponseTimeMs,
	}, nil
}
