package recording

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
	httperr "github.com/paytrace-lab/paytrace/internal/core/errors"
	"github.com/paytrace-lab/paytrace/internal/trace"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgRecordFailed   = "Failed to record trace event"
)

// recordingError carries the structured HTTP error shape from a helper
// back to the handler. Helpers return this instead of writing to
// gin.Context directly, keeping them decoupled from HTTP.
type recordingError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *recordingError) Error() string {
	return e.message
}

// RecordHandler handles HTTP POST requests submitting one trace event.
func (s *Service) RecordHandler(c *gin.Context) {
	req, payloadSize, err := s.parseSubmission(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if !s.recorder.Enabled() {
		c.JSON(http.StatusAccepted, gin.H{"status": "disabled"})
		return
	}

	event, recordErr := s.recorder.Record(c.Request.Context(), req)
	if recordErr != nil {
		if errors.Is(recordErr, trace.ErrInvalidSubmission) {
			slog.Warn("Rejected trace submission", "error", recordErr, "payload_size", payloadSize)
			writeError(c, &recordingError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidRequestError,
				message:    recordErr.Error(),
			})
			return
		}

		slog.Error("Failed to record trace event", "error", recordErr, "payment_id", req.PaymentID)
		writeError(c, &recordingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgRecordFailed,
		})
		return
	}

	slog.Info("Recorded trace event",
		"payment_id", req.PaymentID,
		"event", req.Event,
		"payload_size", payloadSize,
		"queued", event == nil)

	if event == nil {
		// Async mode: persistence happens out of band, no id to return.
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded", "event": event})
}

// TimelineHandler serves a payment's timeline as JSON or plain text,
// optionally with issue/anomaly analysis.
func (s *Service) TimelineHandler(c *gin.Context) {
	paymentID := c.Param("payment_id")
	detailed, _ := strconv.ParseBool(c.Query("detailed"))
	asText := c.Query("format") == "text" ||
		strings.Contains(c.GetHeader("Accept"), "text/plain")

	if detailed {
		tl, err := s.builder.BuildDetailed(c.Request.Context(), paymentID)
		if err != nil {
			writeTimelineError(c, paymentID, err)
			return
		}
		if asText {
			c.String(http.StatusOK, tl.ToDetailedText())
			return
		}
		c.JSON(http.StatusOK, tl.ToDetailedJSON())
		return
	}

	tl, err := s.builder.Build(c.Request.Context(), paymentID)
	if err != nil {
		writeTimelineError(c, paymentID, err)
		return
	}
	if asText {
		c.String(http.StatusOK, tl.ToText())
		return
	}
	c.JSON(http.StatusOK, tl.ToJSON())
}

// parseSubmission reads the raw request body under the size cap and
// binds it into a RecordRequest.
func (s *Service) parseSubmission(c *gin.Context) (*v1.RecordRequest, int, *recordingError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &recordingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &recordingError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req v1.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &recordingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return &req, len(bodyBytes), nil
}

func writeTimelineError(c *gin.Context, paymentID string, err error) {
	slog.Error("Failed to build timeline", "error", err, "payment_id", paymentID)
	writeError(c, &recordingError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    "Failed to load timeline",
	})
}

// writeError serializes a recordingError as the JSON HTTP response.
func writeError(c *gin.Context, err *recordingError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
