package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decode outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeInvalid   = "invalid"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "packetctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "packetctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "packetctl",
			Subsystem: "decoder",
			Name:      "decodes_total",
			Help:      "Packet decodes by outcome.",
		},
		[]string{"node", "outcome"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "packetctl",
			Subsystem: "decoder",
			Name:      "decode_duration_seconds",
			Help:      "Decode and evaluation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"node", "outcome"},
	)
	decodePackets = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "packetctl",
			Subsystem: "decoder",
			Name:      "tree_packets",
			Help:      "Packets per decoded tree.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"node"},
	)
	decodeDepth = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "packetctl",
			Subsystem: "decoder",
			Name:      "tree_depth",
			Help:      "Nesting depth per decoded tree.",
			Buckets:   prometheus.LinearBuckets(1, 4, 10),
		},
		[]string{"node"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, decodes, decodeDuration, decodePackets, decodeDepth)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode records one decode attempt. packets and depth are only
// observed when a tree was produced.
func RecordDecode(node, outcome string, packets, depth int, duration time.Duration) {
	RegisterMetrics()
	decodes.WithLabelValues(node, outcome).Inc()
	decodeDuration.WithLabelValues(node, outcome).Observe(duration.Seconds())
	if packets > 0 {
		decodePackets.WithLabelValues(node).Observe(float64(packets))
		decodeDepth.WithLabelValues(node).Observe(float64(depth))
	}
}
