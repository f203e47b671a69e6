package recording

import (
	"github.com/gin-gonic/gin"
	"github.com/paytrace-lab/paytrace/internal/timeline"
	"github.com/paytrace-lab/paytrace/internal/trace"
)

// Service exposes the recording pipeline and timeline reads over HTTP.
type Service struct {
	recorder         *trace.Recorder
	builder          *timeline.Builder
	maxBodySizeBytes int
}

// NewService creates the HTTP recording service.
func NewService(recorder *trace.Recorder, builder *timeline.Builder, maxBodySizeMB int) *Service {
	if recorder == nil {
		panic("recording: recorder must not be nil")
	}
	if builder == nil {
		panic("recording: timeline builder must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		recorder:         recorder,
		builder:          builder,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the recording and timeline routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/traces", s.RecordHandler)
	r.GET("/v1/payments/:payment_id/timeline", s.TimelineHandler)
}
