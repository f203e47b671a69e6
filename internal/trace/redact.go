package trace

import "strings"

const (
	// RedactedSentinel replaces the value of any key matching a
	// configured sensitive field name.
	RedactedSentinel = "[REDACTED]"

	// DepthSentinel replaces any substructure nested past the
	// configured maximum depth.
	DepthSentinel = "[MAX_DEPTH_EXCEEDED]"
)

// Redact returns a copy of payload with sensitive values masked.
//
// Matching is case-insensitive and substring-based: a configured field
// "secret" also masks a key named "client_secret". Matched keys keep
// their value replaced by RedactedSentinel and are never recursed into.
// Mappings and sequences nested deeper than maxDepth collapse to
// DepthSentinel, which bounds recursion on adversarial input. The
// function is pure and idempotent: the sentinels are plain strings and
// are passed through untouched on a second pass.
func Redact(payload map[string]interface{}, sensitiveFields []string, maxDepth int) map[string]interface{} {
	if payload == nil {
		return map[string]interface{}{}
	}

	fields := make([]string, 0, len(sensitiveFields))
	for _, f := range sensitiveFields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			fields = append(fields, f)
		}
	}

	return redactMap(payload, fields, 0, maxDepth)
}

func redactMap(m map[string]interface{}, fields []string, depth, maxDepth int) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		if keyMatches(key, fields) {
			out[key] = RedactedSentinel
			continue
		}
		out[key] = redactValue(value, fields, depth, maxDepth)
	}
	return out
}

// redactValue dispatches on the decoded-JSON value shapes: mapping,
// sequence, and scalar leaves (string, number, bool, nil). Mappings and
// sequences both consume depth budget, so array nesting cannot sidestep
// the recursion bound.
func redactValue(value interface{}, fields []string, depth, maxDepth int) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		if depth >= maxDepth {
			return DepthSentinel
		}
		return redactMap(v, fields, depth+1, maxDepth)
	case []interface{}:
		if depth >= maxDepth {
			return DepthSentinel
		}
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = redactValue(elem, fields, depth+1, maxDepth)
		}
		return out
	default:
		return v
	}
}

func keyMatches(key string, fields []string) bool {
	lower := strings.ToLower(key)
	for _, f := range fields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
