package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_uploads_total",
			Help: "Dataset uploads by outcome",
		},
		[]string{"outcome"},
	)

	DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guidelines_dataset_rows",
			Help: "Rows in the active dataset",
		},
	)

	FilterDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guidelines_filter_duration_seconds",
			Help:    "Time spent applying dashboard filters",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_dispatch_total",
			Help: "Dispatch table calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_chat_requests_total",
			Help: "Chat messages processed by status",
		},
		[]string{"status"},
	)

	ChatDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guidelines_chat_duration_seconds",
			Help:    "Chat round-trip duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ImageProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_image_probes_total",
			Help: "Image URL probes by outcome",
		},
		[]string{"outcome"},
	)

	ExportedObjects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidelines_exported_objects_total",
			Help: "CSV objects written to the export store",
		},
		[]string{"driver", "status"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(UploadsTotal)
		prometheus.MustRegister(DatasetRows)
		prometheus.MustRegister(FilterDuration)
		prometheus.MustRegister(DispatchTotal)
		prometheus.MustRegister(ChatRequests)
		prometheus.MustRegister(ChatDuration)
		prometheus.MustRegister(LLMTokensUsed)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(ImageProbes)
		prometheus.MustRegister(ExportedObjects)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
