package v1

// Kind is the closed enumeration of trace event kinds.
// Unknown input strings resolve to KindCustom, never to a raw string:
// every persisted event carries a member of this enumeration.
type Kind string

const (
	KindPaymentInitiated Kind = "payment.initiated"
	KindPaymentCompleted Kind = "payment.completed"
	KindPaymentFailed    Kind = "payment.failed"
	KindPaymentCancelled Kind = "payment.cancelled"
	KindPaymentRefunded  Kind = "payment.refunded"

	KindProviderRequestSent      Kind = "provider.request_sent"
	KindProviderResponseReceived Kind = "provider.response_received"
	KindProviderTimeout          Kind = "provider.timeout"
	KindProviderError            Kind = "provider.error"
	KindProviderException        Kind = "provider.exception"

	KindWebhookReceived         Kind = "webhook.received"
	KindWebhookDuplicate        Kind = "webhook.duplicate"
	KindWebhookValidationFailed Kind = "webhook.validation_failed"
	KindWebhookProcessingFailed Kind = "webhook.processing_failed"

	KindRetryScheduled Kind = "retry.scheduled"
	KindRetryExecuted  Kind = "retry.executed"
	KindRetryAbandoned Kind = "retry.abandoned"

	KindAuthRequired  Kind = "auth.required"
	KindAuthCompleted Kind = "auth.completed"
	KindAuthFailed    Kind = "auth.failed"

	KindVerificationStarted   Kind = "verification.started"
	KindVerificationCompleted Kind = "verification.completed"
	KindVerificationFailed    Kind = "verification.failed"

	KindCustom Kind = "custom"
)

// Direction classifies where an event crossed the application boundary.
type Direction string

const (
	DirectionInternal Direction = "INTERNAL"
	DirectionOutbound Direction = "OUTBOUND"
	DirectionInbound  Direction = "INBOUND"
)

var kindDescriptions = map[Kind]string{
	KindPaymentInitiated:         "Payment initiated",
	KindPaymentCompleted:         "Payment completed",
	KindPaymentFailed:            "Payment failed",
	KindPaymentCancelled:         "Payment cancelled",
	KindPaymentRefunded:          "Payment refunded",
	KindProviderRequestSent:      "Request sent to provider",
	KindProviderResponseReceived: "Response received from provider",
	KindProviderTimeout:          "Provider call timed out",
	KindProviderError:            "Provider returned an error",
	KindProviderException:        "Provider call raised an exception",
	KindWebhookReceived:          "Webhook received",
	KindWebhookDuplicate:         "Duplicate webhook received",
	KindWebhookValidationFailed:  "Webhook validation failed",
	KindWebhookProcessingFailed:  "Webhook processing failed",
	KindRetryScheduled:           "Retry scheduled",
	KindRetryExecuted:            "Retry executed",
	KindRetryAbandoned:           "Retry abandoned",
	KindAuthRequired:             "Authentication required",
	KindAuthCompleted:            "Authentication completed",
	KindAuthFailed:               "Authentication failed",
	KindVerificationStarted:      "Verification started",
	KindVerificationCompleted:    "Verification completed",
	KindVerificationFailed:       "Verification failed",
	KindCustom:                   "Custom event",
}

// terminalKinds end a payment's observable flow.
var terminalKinds = map[Kind]struct{}{
	KindPaymentCompleted: {},
	KindPaymentFailed:    {},
	KindPaymentCancelled: {},
	KindRetryAbandoned:   {},
}

// errorKinds mark an event as an error for timeline summaries.
var errorKinds = map[Kind]struct{}{
	KindPaymentFailed:           {},
	KindProviderTimeout:         {},
	KindProviderError:           {},
	KindProviderException:       {},
	KindWebhookValidationFailed: {},
	KindWebhookProcessingFailed: {},
	KindAuthFailed:              {},
	KindVerificationFailed:      {},
}

// providerResponseKinds are the response-shaped kinds used by the
// missing-response and excessive-latency checks. Orphan detection
// additionally accepts KindProviderException.
var providerResponseKinds = map[Kind]struct{}{
	KindProviderResponseReceived: {},
	KindProviderError:            {},
	KindProviderTimeout:          {},
}

// ResolveKind maps an input string to an enumeration member.
// Unrecognized strings degrade to KindCustom rather than failing.
func ResolveKind(s string) Kind {
	k := Kind(s)
	if _, ok := kindDescriptions[k]; ok {
		return k
	}
	return KindCustom
}

// Description returns the human-readable label for a kind.
func (k Kind) Description() string {
	if d, ok := kindDescriptions[k]; ok {
		return d
	}
	return kindDescriptions[KindCustom]
}

// IsTerminal reports whether the kind ends a payment's observable flow.
func (k Kind) IsTerminal() bool {
	_, ok := terminalKinds[k]
	return ok
}

// IsError reports whether the kind belongs to the error subset.
func (k Kind) IsError() bool {
	_, ok := errorKinds[k]
	return ok
}

// IsProviderResponse reports whether the kind is response-shaped
// (response received, provider error, or provider timeout).
func (k Kind) IsProviderResponse() bool {
	_, ok := providerResponseKinds[k]
	return ok
}

// InferredDirection derives the boundary direction for events that did
// not declare one. Outbound requests cross out, responses and webhooks
// cross in, everything else is app-local.
func (k Kind) InferredDirection() Direction {
	switch k {
	case KindProviderRequestSent:
		return DirectionOutbound
	case KindProviderResponseReceived,
		KindWebhookReceived,
		KindWebhookDuplicate,
		KindWebhookValidationFailed,
		KindWebhookProcessingFailed:
		return DirectionInbound
	default:
		return DirectionInternal
	}
}

// ParseDirection maps an input string to a Direction.
// Returns false for anything outside the three members.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionInternal, DirectionOutbound, DirectionInbound:
		return Direction(s), true
	default:
		return "", false
	}
}
