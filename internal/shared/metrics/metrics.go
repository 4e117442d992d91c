package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels shared by upload and chat counters.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultNotFound = "not_found"
	ResultFailed   = "failed"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of requests labelled by method, route and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10, 30},
	}, []string{"method", "route"})

	pdfUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdf_uploads_total",
		Help: "PDF uploads labelled by result",
	}, []string{"result"})

	pdfPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdf_extracted_pages",
		Help:    "Page count of successfully extracted PDFs.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Chat requests labelled by result",
	}, []string{"result"})

	llmLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_request_duration_seconds",
		Help:    "Latency of language model completion calls.",
		Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
	}, []string{"model", "outcome"})
)

// ObserveHTTP records a finished HTTP request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncUpload counts an upload attempt by result.
func IncUpload(result string) {
	pdfUploadsTotal.WithLabelValues(result).Inc()
}

// ObservePages records the page count of an extracted PDF.
func ObservePages(pages int) {
	pdfPages.Observe(float64(pages))
}

// IncChat counts a chat request by result.
func IncChat(result string) {
	chatRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveLLM records the latency of a completion call.
func ObserveLLM(model string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	llmLatency.WithLabelValues(model, outcome).Observe(elapsed.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
