package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExternalCallDuration observes latency of calls to outside services
// (openai, elevenlabs, pexels, pixabay).
var ExternalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "bookreel_external_call_duration_seconds",
	Help:    "Latency of external service calls.",
	Buckets: prometheus.DefBuckets,
}, []string{"service", "operation"})

// PipelineFailures counts classified pipeline failures.
var PipelineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bookreel_pipeline_failures_total",
	Help: "Pipeline failures by step and error code.",
}, []string{"step", "code"})

// VideosRendered counts successful full renders.
var VideosRendered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bookreel_videos_rendered_total",
	Help: "Successfully rendered videos.",
})

// ObserveCall records the elapsed time of one external call.
func ObserveCall(service, operation string, start time.Time) {
	ExternalCallDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
}
