package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

func TestNormalize_RequiresPaymentID(t *testing.T) {
	_, err := Normalize(&v1.RecordRequest{Event: "payment.initiated"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestNormalize_ResolvesKind(t *testing.T) {
	tests := []struct {
		name  string
		event string
		want  v1.Kind
	}{
		{name: "known string", event: "provider.request_sent", want: v1.KindProviderRequestSent},
		{name: "unknown maps to custom", event: "totally.unknown", want: v1.KindCustom},
		{name: "empty maps to custom", event: "", want: v1.KindCustom},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			evt, err := Normalize(&v1.RecordRequest{PaymentID: "pay_1", Event: tc.event})
			require.NoError(t, err)
			require.Equal(t, tc.want, evt.EventKind)
		})
	}
}

func TestNormalize_Direction(t *testing.T) {
	// Explicit direction is kept.
	evt, err := Normalize(&v1.RecordRequest{
		PaymentID: "pay_1",
		Event:     "payment.initiated",
		Direction: "OUTBOUND",
	})
	require.NoError(t, err)
	require.Equal(t, v1.DirectionOutbound, evt.Direction)

	// Absent direction is inferred from the kind.
	evt, err = Normalize(&v1.RecordRequest{
		PaymentID: "pay_1",
		Event:     "provider.request_sent",
	})
	require.NoError(t, err)
	require.Equal(t, v1.DirectionOutbound, evt.Direction)

	// Unrecognized direction falls back to inference.
	evt, err = Normalize(&v1.RecordRequest{
		PaymentID: "pay_1",
		Event:     "webhook.received",
		Direction: "sideways",
	})
	require.NoError(t, err)
	require.Equal(t, v1.DirectionInbound, evt.Direction)
}

func TestNormalize_CorrelationID(t *testing.T) {
	evt, err := Normalize(&v1.RecordRequest{
		PaymentID:     "pay_1",
		Event:         "payment.initiated",
		CorrelationID: "caller-chosen",
	})
	require.NoError(t, err)
	require.Equal(t, "caller-chosen", evt.CorrelationID)

	evt, err = Normalize(&v1.RecordRequest{PaymentID: "pay_1", Event: "payment.initiated"})
	require.NoError(t, err)
	require.NotEmpty(t, evt.CorrelationID)

	other, err := Normalize(&v1.RecordRequest{PaymentID: "pay_1", Event: "payment.initiated"})
	require.NoError(t, err)
	require.NotEqual(t, evt.CorrelationID, other.CorrelationID)
}

func TestNormalize_DefaultsMetadata(t *testing.T) {
	evt, err := Normalize(&v1.RecordRequest{PaymentID: "pay_1", Event: "payment.initiated"})
	require.NoError(t, err)
	require.NotNil(t, evt.Metadata)
	require.Empty(t, evt.Metadata)
}

func TestNormalize_LeavesStorageFieldsZero(t *testing.T) {
	evt, err := Normalize(&v1.RecordRequest{PaymentID: "pay_1", Event: "payment.initiated"})
	require.NoError(t, err)
	require.Zero(t, evt.ID)
	require.True(t, evt.CreatedAt.IsZero())
}
