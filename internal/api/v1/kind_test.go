package v1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{name: "known lifecycle kind", input: "payment.initiated", want: KindPaymentInitiated},
		{name: "known provider kind", input: "provider.timeout", want: KindProviderTimeout},
		{name: "unknown degrades to custom", input: "totally.unknown", want: KindCustom},
		{name: "empty degrades to custom", input: "", want: KindCustom},
		{name: "case sensitive", input: "Payment.Initiated", want: KindCustom},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveKind(tc.input))
		})
	}
}

func TestKindSubsets(t *testing.T) {
	terminal := []Kind{KindPaymentCompleted, KindPaymentFailed, KindPaymentCancelled, KindRetryAbandoned}
	for _, k := range terminal {
		require.True(t, k.IsTerminal(), "expected %s to be terminal", k)
	}
	require.False(t, KindPaymentInitiated.IsTerminal())
	require.False(t, KindPaymentRefunded.IsTerminal())

	errs := []Kind{
		KindPaymentFailed, KindProviderTimeout, KindProviderError, KindProviderException,
		KindWebhookValidationFailed, KindWebhookProcessingFailed, KindAuthFailed, KindVerificationFailed,
	}
	for _, k := range errs {
		require.True(t, k.IsError(), "expected %s to be an error kind", k)
	}
	require.False(t, KindWebhookReceived.IsError())
	require.False(t, KindPaymentCancelled.IsError())

	responses := []Kind{KindProviderResponseReceived, KindProviderError, KindProviderTimeout}
	for _, k := range responses {
		require.True(t, k.IsProviderResponse(), "expected %s to be response-shaped", k)
	}
	require.False(t, KindProviderException.IsProviderResponse())
	require.False(t, KindProviderRequestSent.IsProviderResponse())
}

func TestInferredDirection(t *testing.T) {
	require.Equal(t, DirectionOutbound, KindProviderRequestSent.InferredDirection())
	require.Equal(t, DirectionInbound, KindProviderResponseReceived.InferredDirection())
	require.Equal(t, DirectionInbound, KindWebhookReceived.InferredDirection())
	require.Equal(t, DirectionInbound, KindWebhookDuplicate.InferredDirection())
	require.Equal(t, DirectionInternal, KindPaymentInitiated.InferredDirection())
	require.Equal(t, DirectionInternal, KindProviderTimeout.InferredDirection())
	require.Equal(t, DirectionInternal, KindCustom.InferredDirection())
}

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection("OUTBOUND")
	require.True(t, ok)
	require.Equal(t, DirectionOutbound, d)

	_, ok = ParseDirection("sideways")
	require.False(t, ok)

	_, ok = ParseDirection("")
	require.False(t, ok)
}

func TestRecordRequestValidate(t *testing.T) {
	req := &RecordRequest{Event: "payment.initiated"}
	require.Error(t, req.Validate())

	req.PaymentID = "pay_1"
	require.NoError(t, req.Validate())
}
