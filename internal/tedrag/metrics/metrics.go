// Package metrics collects service-level counters for the QA pipeline.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds counters for the question answering pipeline.
type Metrics struct {
	questionsTotal  uint64
	questionsErrors uint64
	cacheHits       uint64
	cacheMisses     uint64

	// Per-outcome counters for the synthesis stage.
	refusalsTotal      uint64
	deterministicTotal uint64
	generationsTotal   uint64
	generationErrors   uint64

	retrievalTotal    uint64
	retrievalErrors   uint64
	retrievalDuration float64
	answerDuration    float64

	ingestedTalks  uint64
	ingestedChunks uint64
	embeddedChunks uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{startTime: time.Now()}
	})
	return global
}

// RecordQuestion records one handled question along with its total latency.
func (m *Metrics) RecordQuestion(duration time.Duration, err error) {
	atomic.AddUint64(&m.questionsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.questionsErrors, 1)
		return
	}
	m.durationMu.Lock()
	m.answerDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordCacheLookup records an answer cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if hit {
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMisses, 1)
	}
}

// RecordRefusal records a grounding refusal.
func (m *Metrics) RecordRefusal() {
	atomic.AddUint64(&m.refusalsTotal, 1)
}

// RecordDeterministicAnswer records an answer produced without a generation call.
func (m *Metrics) RecordDeterministicAnswer() {
	atomic.AddUint64(&m.deterministicTotal, 1)
}

// RecordGeneration records one generation call.
func (m *Metrics) RecordGeneration(err error) {
	atomic.AddUint64(&m.generationsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.generationErrors, 1)
	}
}

// RecordRetrieval records one similarity search.
func (m *Metrics) RecordRetrieval(duration time.Duration, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}
	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordIngestion records an ingestion run's totals.
func (m *Metrics) RecordIngestion(talks, chunks, embedded int) {
	atomic.AddUint64(&m.ingestedTalks, uint64(talks))
	atomic.AddUint64(&m.ingestedChunks, uint64(chunks))
	atomic.AddUint64(&m.embeddedChunks, uint64(embedded))
}

func writeCounter(sb *strings.Builder, name, help string, value uint64) {
	fmt.Fprintf(sb, "# HELP %s %s\n", name, help)
	fmt.Fprintf(sb, "# TYPE %s counter\n", name)
	fmt.Fprintf(sb, "%s %d\n\n", name, value)
}

func writeGaugeFloat(sb *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(sb, "# HELP %s %s\n", name, help)
	fmt.Fprintf(sb, "# TYPE %s gauge\n", name)
	fmt.Fprintf(sb, "%s %.6f\n\n", name, value)
}

// Export renders the counters in Prometheus text format.
func (m *Metrics) Export(namespace string) string {
	var sb strings.Builder

	writeCounter(&sb, namespace+"_questions_total", "Total questions handled.", atomic.LoadUint64(&m.questionsTotal))
	writeCounter(&sb, namespace+"_questions_errors_total", "Questions that failed with a service error.", atomic.LoadUint64(&m.questionsErrors))
	writeCounter(&sb, namespace+"_answer_cache_hits_total", "Answer cache hits.", atomic.LoadUint64(&m.cacheHits))
	writeCounter(&sb, namespace+"_answer_cache_misses_total", "Answer cache misses.", atomic.LoadUint64(&m.cacheMisses))
	writeCounter(&sb, namespace+"_refusals_total", "Grounding refusals returned.", atomic.LoadUint64(&m.refusalsTotal))
	writeCounter(&sb, namespace+"_deterministic_answers_total", "Answers produced without a generation call.", atomic.LoadUint64(&m.deterministicTotal))
	writeCounter(&sb, namespace+"_generations_total", "Generation calls made.", atomic.LoadUint64(&m.generationsTotal))
	writeCounter(&sb, namespace+"_generation_errors_total", "Generation calls that failed.", atomic.LoadUint64(&m.generationErrors))
	writeCounter(&sb, namespace+"_retrievals_total", "Similarity searches performed.", atomic.LoadUint64(&m.retrievalTotal))
	writeCounter(&sb, namespace+"_retrieval_errors_total", "Similarity searches that failed.", atomic.LoadUint64(&m.retrievalErrors))
	writeCounter(&sb, namespace+"_ingested_talks_total", "Talks processed by ingestion.", atomic.LoadUint64(&m.ingestedTalks))
	writeCounter(&sb, namespace+"_ingested_chunks_total", "Chunks written by ingestion.", atomic.LoadUint64(&m.ingestedChunks))
	writeCounter(&sb, namespace+"_embedded_chunks_total", "Chunks embedded (cache misses) by ingestion.", atomic.LoadUint64(&m.embeddedChunks))

	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	answerDuration := m.answerDuration
	m.durationMu.Unlock()

	writeGaugeFloat(&sb, namespace+"_retrieval_duration_seconds_total", "Total retrieval duration.", retrievalDuration)
	writeGaugeFloat(&sb, namespace+"_answer_duration_seconds_total", "Total answer latency.", answerDuration)
	writeGaugeFloat(&sb, namespace+"_uptime_seconds", "Service uptime in seconds.", time.Since(m.startTime).Seconds())

	return sb.String()
}

// Reset clears all counters. Test helper.
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.questionsTotal, 0)
	atomic.StoreUint64(&m.questionsErrors, 0)
	atomic.StoreUint64(&m.cacheHits, 0)
	atomic.StoreUint64(&m.cacheMisses, 0)
	atomic.StoreUint64(&m.refusalsTotal, 0)
	atomic.StoreUint64(&m.deterministicTotal, 0)
	atomic.StoreUint64(&m.generationsTotal, 0)
	atomic.StoreUint64(&m.generationErrors, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalErrors, 0)
	atomic.StoreUint64(&m.ingestedTalks, 0)
	atomic.StoreUint64(&m.ingestedChunks, 0)
	atomic.StoreUint64(&m.embeddedChunks, 0)

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.answerDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
