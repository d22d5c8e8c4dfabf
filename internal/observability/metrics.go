// Package observability exposes prometheus metrics for the synthesis pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	synthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxpet_synthesis_total",
		Help: "Synthesis outcomes by serving backend",
	}, []string{"backend"}) // backend: "cache", "voicevox", "mock"

	synthesisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxpet_synthesis_duration_seconds",
		Help:    "End-to-end synthesis resolution latency in seconds",
		Buckets: []float64{0.005, 0.05, 0.25, 1.0, 5.0, 15.0, 45.0},
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxpet_cache_lookups_total",
		Help: "Audio cache lookups by result",
	}, []string{"result"}) // result: "hit" or "miss"

	voicevoxRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxpet_voicevox_requests_total",
		Help: "VOICEVOX synthesis attempts by status",
	}, []string{"status"}) // status: "success" or "error"

	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxpet_chat_requests_total",
		Help: "Chat completion requests by status",
	}, []string{"status"}) // status: "success" or "fallback"
)

// RecordSynthesis records a resolved synthesis outcome and its latency.
func RecordSynthesis(backend string, start time.Time) {
	synthesisTotal.WithLabelValues(backend).Inc()
	synthesisDuration.Observe(time.Since(start).Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

// RecordVoicevoxRequest records a VOICEVOX synthesis attempt.
func RecordVoicevoxRequest(success bool) {
	status := "error"
	if success {
		status = "success"
	}
	voicevoxRequests.WithLabelValues(status).Inc()
}

// RecordChatRequest records whether a chat completion succeeded or fell back
// to echoing the user.
func RecordChatRequest(success bool) {
	status := "fallback"
	if success {
		status = "success"
	}
	chatRequests.WithLabelValues(status).Inc()
}
