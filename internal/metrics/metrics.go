package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Requests counts handled chat messages by outcome (summary, question,
// translation, command, rate_limited, error).
var Requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ytassist_requests_total",
	Help: "Chat messages handled, labelled by outcome.",
}, []string{"outcome"})

// GenerationSeconds tracks latency of generation provider calls.
var GenerationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ytassist_generation_seconds",
	Help:    "Latency of text-generation provider calls.",
	Buckets: prometheus.DefBuckets,
})

// TranscriptSeconds tracks latency of transcript fetches.
var TranscriptSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ytassist_transcript_fetch_seconds",
	Help:    "Latency of transcript provider calls.",
	Buckets: prometheus.DefBuckets,
})
