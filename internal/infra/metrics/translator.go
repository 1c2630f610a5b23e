package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(translatorLatencyMs, translatorPromptTokens, rateLimiterWaitMs)
}

var translatorLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "translator_calls_latency_ms",
		Help:    "Translator provider call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"provider", "op", "success"},
)

var translatorPromptTokens = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "translator_prompt_tokens_total",
		Help: "Sum of prompt tokens sent per provider/operation.",
	},
	[]string{"provider", "op"},
)

var rateLimiterWaitMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "rate_limiter_wait_ms",
		Help:    "Time workers spent blocked in the shared rate limiter.",
		Buckets: []float64{0, 5, 25, 50, 100, 250, 500, 1000, 2500},
	},
)

func ObserveTranslatorCall(provider, op string, latencyMs int, success bool) {
	translatorLatencyMs.WithLabelValues(norm(provider), norm(op), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func AddPromptTokens(provider, op string, tokens int) {
	translatorPromptTokens.WithLabelValues(norm(provider), norm(op)).Add(float64(tokens))
}

func ObserveRateLimiterWait(waitMs float64) {
	rateLimiterWaitMs.Observe(waitMs)
}
