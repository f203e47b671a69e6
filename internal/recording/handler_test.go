package recording

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
	httperr "github.com/paytrace-lab/paytrace/internal/core/errors"
	"github.com/paytrace-lab/paytrace/internal/core/storage"
	"github.com/paytrace-lab/paytrace/internal/timeline"
	"github.com/paytrace-lab/paytrace/internal/trace"
)

func newTestRouter(t *testing.T, cfg trace.Config, queue *trace.Queue) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	recorder := trace.NewRecorder(store, queue, cfg)
	builder := timeline.NewBuilder(store, timeline.AnalyzerConfig{})
	svc := NewService(recorder, builder, 1)

	r := gin.New()
	svc.RegisterRoutes(r)
	return r, store
}

func defaultTraceConfig() trace.Config {
	return trace.Config{
		Enabled:           true,
		SensitiveFields:   []string{"card_number", "cvv"},
		MaxRedactionDepth: 8,
	}
}

func postTrace(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/traces", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRecordHandler_Success(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)

	resp := postTrace(r, `{
		"payment_id": "pay_1",
		"event": "provider.request_sent",
		"provider": "stripe",
		"payload": {"amount": "19.99", "card_number": "4242424242424242"}
	}`)

	require.Equal(t, http.StatusAccepted, resp.Code)

	var result struct {
		Status string         `json:"status"`
		Event  *v1.TraceEvent `json:"event"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "recorded", result.Status)
	require.NotNil(t, result.Event)
	require.NotZero(t, result.Event.ID)
	require.Equal(t, v1.KindProviderRequestSent, result.Event.EventKind)
	require.Equal(t, v1.DirectionOutbound, result.Event.Direction)
	require.NotEmpty(t, result.Event.CorrelationID)
	require.Equal(t, trace.RedactedSentinel, result.Event.Payload["card_number"])
	require.Equal(t, "19.99", result.Event.Payload["amount"])

	require.Equal(t, 1, store.Len())
}

func TestRecordHandler_UnknownEventRecordedAsCustom(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)

	resp := postTrace(r, `{"payment_id": "pay_1", "event": "something.nobody.knows"}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	events, err := store.ListEventsByPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, v1.KindCustom, events[0].EventKind)
}

func TestRecordHandler_MissingPaymentID(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)

	resp := postTrace(r, `{"event": "payment.initiated"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidRequestError, errResp.ErrorType)
	require.Equal(t, 0, store.Len())
}

func TestRecordHandler_InvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t, defaultTraceConfig(), nil)

	resp := postTrace(r, "not json")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestRecordHandler_BodyTooLarge(t *testing.T) {
	r, _ := newTestRouter(t, defaultTraceConfig(), nil)

	oversized := `{"payment_id": "pay_1", "event": "custom", "payload": {"blob": "` +
		strings.Repeat("x", 2*1024*1024) + `"}}`
	resp := postTrace(r, oversized)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestRecordHandler_DisabledShortCircuits(t *testing.T) {
	cfg := defaultTraceConfig()
	cfg.Enabled = false
	r, store := newTestRouter(t, cfg, nil)

	resp := postTrace(r, `{"payment_id": "pay_1", "event": "payment.initiated"}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "disabled", result["status"])
	require.Equal(t, 0, store.Len())
}

func TestRecordHandler_AsyncReturnsQueued(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	queue := trace.NewQueue(store, 8)
	cfg := defaultTraceConfig()
	cfg.Async = true
	recorder := trace.NewRecorder(store, queue, cfg)
	builder := timeline.NewBuilder(store, timeline.AnalyzerConfig{})
	svc := NewService(recorder, builder, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	resp := postTrace(r, `{"payment_id": "pay_1", "event": "payment.initiated"}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "queued", result["status"])
	// Nothing persisted until the queue worker runs.
	require.Equal(t, 0, store.Len())
}

func TestTimelineHandler_JSON(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)
	seedTimeline(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1/timeline", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var proj timeline.Projection
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &proj))
	require.Equal(t, "pay_1", proj.PaymentID)
	require.Len(t, proj.Events, 3)
	require.Equal(t, 3, proj.Summary.TotalEvents)
	require.True(t, proj.Summary.Succeeded)
}

func TestTimelineHandler_DetailedJSON(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)
	seedTimeline(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1/timeline?detailed=true", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var proj timeline.DetailedProjection
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &proj))
	require.Equal(t, "pay_1", proj.PaymentID)
	require.NotNil(t, proj.Issues)
	require.NotNil(t, proj.Anomalies)
}

func TestTimelineHandler_TextFormat(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)
	seedTimeline(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1/timeline?format=text", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Timeline for payment pay_1")
	require.Contains(t, resp.Body.String(), "Status: payment.completed")
}

func TestTimelineHandler_AcceptHeaderSelectsText(t *testing.T) {
	r, store := newTestRouter(t, defaultTraceConfig(), nil)
	seedTimeline(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1/timeline", nil)
	req.Header.Set("Accept", "text/plain")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Timeline for payment pay_1")
}

func TestTimelineHandler_UnknownPaymentIsEmpty(t *testing.T) {
	r, _ := newTestRouter(t, defaultTraceConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_missing/timeline", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var proj timeline.Projection
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &proj))
	require.Empty(t, proj.Events)
	require.Equal(t, 0, proj.Summary.TotalEvents)
}

func seedTimeline(t *testing.T, store *storage.MemoryStore) {
	t.Helper()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i, kind := range []v1.Kind{
		v1.KindPaymentInitiated,
		v1.KindProviderRequestSent,
		v1.KindPaymentCompleted,
	} {
		require.NoError(t, store.InsertEvent(context.Background(), &v1.TraceEvent{
			PaymentID:     "pay_1",
			CorrelationID: "c1",
			EventKind:     kind,
			Direction:     kind.InferredDirection(),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}))
	}
}
