package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name  string
	help  string
	value atomic.Uint64
}

func (c *counter) inc() { c.value.Add(1) }

var (
	analysisStarted   = &counter{name: "skillgap_analysis_started_total", help: "Total analyses started"}
	analysisCompleted = &counter{name: "skillgap_analysis_completed_total", help: "Total analyses completed"}
	analysisFailed    = &counter{name: "skillgap_analysis_failed_total", help: "Total analyses failed"}
	sourceFallback    = &counter{name: "skillgap_job_source_fallback_total", help: "Job searches served from the synthetic corpus after a source failure"}
	clusterFallback   = &counter{name: "skillgap_clustering_fallback_total", help: "Analyses scored by overlap only after a clustering failure"}
	catalogMiss       = &counter{name: "skillgap_catalog_miss_total", help: "Plan skills without a catalog resource"}
	workerReceived    = &counter{name: "skillgap_worker_messages_received_total", help: "Queue messages received by the worker"}
	workerCompleted   = &counter{name: "skillgap_worker_messages_completed_total", help: "Queue messages processed successfully"}
	workerFailed      = &counter{name: "skillgap_worker_messages_failed_total", help: "Queue messages that failed processing"}
	workerDeleted     = &counter{name: "skillgap_worker_messages_deleted_total", help: "Queue messages acknowledged or deleted"}
	rateLimited       = &counter{name: "skillgap_rate_limited_total", help: "Requests rejected by the analyses rate limit"}

	counters = []*counter{
		analysisStarted, analysisCompleted, analysisFailed,
		sourceFallback, clusterFallback, catalogMiss,
		workerReceived, workerCompleted, workerFailed, workerDeleted,
		rateLimited,
	}

	analysisDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

func IncAnalysisStarted()   { analysisStarted.inc() }
func IncAnalysisCompleted() { analysisCompleted.inc() }
func IncAnalysisFailed()    { analysisFailed.inc() }

// IncSourceFallback counts a job search answered by the synthetic corpus.
func IncSourceFallback() { sourceFallback.inc() }

// IncClusteringFallback counts an analysis that skipped cluster scoring.
func IncClusteringFallback() { clusterFallback.inc() }

// IncCatalogMiss counts a plan skill that received generic resources.
func IncCatalogMiss() { catalogMiss.inc() }

func IncWorkerReceived()  { workerReceived.inc() }
func IncWorkerCompleted() { workerCompleted.inc() }
func IncWorkerFailed()    { workerFailed.inc() }
func IncWorkerDeleted()   { workerDeleted.inc() }

// IncRateLimited counts a request answered with 429.
func IncRateLimited() { rateLimited.inc() }

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// ObserveAnalysisSince records the time elapsed since start.
func ObserveAnalysisSince(start time.Time) {
	ObserveAnalysisDurationMs(float64(time.Since(start)) / float64(time.Millisecond))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, c := range counters {
		writeCounter(&buf, c.name, c.help, c.value.Load())
	}
	writeHistogram(&buf, "skillgap_analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{buckets: buckets, counts: make([]uint64, len(buckets))}
}

// Observe records value in the first bucket whose bound covers it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
}

// writeHistogram emits cumulative bucket counts.
func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s histogram\n", name, help, name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
