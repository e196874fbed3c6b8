package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total chat requests processed, labeled by terminal state.",
		},
		[]string{"state"},
	)

	OODDeflectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_ood_deflections_total",
			Help: "Questions deflected as out of domain.",
		},
	)

	StreamTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_stream_tokens_total",
			Help: "Tokens streamed to clients.",
		},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_retrieval_duration_seconds",
			Help:    "Latency of document retrieval per request.",
			Buckets: prometheus.DefBuckets,
		},
	)

	QuestionsByType = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_questions_by_type_total",
			Help: "Analyzed questions grouped by category.",
		},
		[]string{"type"},
	)

	ActiveConversations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_conversations",
			Help: "Conversation contexts currently held in memory.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ChatRequestsTotal,
		OODDeflectionsTotal,
		StreamTokensTotal,
		RetrievalDuration,
		QuestionsByType,
		ActiveConversations,
	)
}
