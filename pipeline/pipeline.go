// Package pipeline normalizes raw crawl items into analytical records,
// filters them to the target categories, and writes them to the configured
// outputs.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-book-analytics/config"
	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/models"
	"github.com/aluiziolira/go-book-analytics/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(records []*models.Record) error
	Close() error
	Validate() error
}

// Pipeline coordinates validation, de-duplication, normalization, category
// filtering, and output writing. Records that survive are also accumulated
// for the in-memory dataset.
type Pipeline struct {
	writer    OutputWriter
	rawCh     chan *models.RawBook
	batchSize int
	targets   dataset.CategorySet
	seen      *lru.Cache[string, struct{}]

	wg sync.WaitGroup

	recordsMu sync.Mutex
	records   []*models.Record

	metrics metrics

	mu     sync.Mutex // guards closed/err
	closed bool
	err    error

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline with a modest in-memory buffer.
func NewPipeline(writer OutputWriter, cfg *config.Config) (*Pipeline, error) {
	seen, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}

	return &Pipeline{
		writer:    writer,
		rawCh:     make(chan *models.RawBook, cfg.PipelineBufferSize),
		batchSize: cfg.BatchSize,
		targets:   dataset.NewCategorySet(cfg.TargetCategories),
		seen:      seen,
		metrics:   newMetrics(),
		shutdown:  make(chan struct{}),
	}, nil
}

// Start launches worker goroutines. A single worker preserves crawl order
// in the accumulated records.
func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process enqueues a raw item for downstream processing.
func (p *Pipeline) Process(raw *models.RawBook) error {
	if raw == nil {
		return nil
	}

	closed, err := p.state()
	if err != nil {
		return err
	}
	if closed {
		return ErrPipelineClosed
	}

	return p.enqueue(raw)
}

// Close waits for workers to finish and prevents more submissions.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
	}
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.rawCh)
	})

	p.wg.Wait()
	return p.Err()
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Records returns a snapshot of the accumulated normalized records.
func (p *Pipeline) Records() []*models.Record {
	p.recordsMu.Lock()
	defer p.recordsMu.Unlock()

	out := make([]*models.Record, len(p.records))
	copy(out, p.records)
	return out
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snapshot := p.GetMetrics()
				processed := snapshot["processed_records"].(int64)
				dropped := snapshot["dropped_records"].(map[string]int)
				slog.Info("pipeline progress",
					slog.Int64("processed", processed),
					slog.Int("drop_reasons", len(dropped)),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	batch := make([]*models.Record, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.Write(batch); err != nil {
			return err
		}

		p.recordsMu.Lock()
		p.records = append(p.records, batch...)
		p.recordsMu.Unlock()

		batch = batch[:0]
		return nil
	}

	for raw := range p.rawCh {
		record := p.prepare(raw)
		if record == nil {
			continue
		}
		batch = append(batch, record)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				p.setErr(fmt.Errorf("write batch: %w", err))
				return
			}
		}
	}

	if err := flush(); err != nil {
		p.setErr(fmt.Errorf("write batch: %w", err))
	}
}

// prepare applies the normalization and filter policy to one raw item. A
// nil return means the item was dropped; the reason is counted.
func (p *Pipeline) prepare(raw *models.RawBook) *models.Record {
	if err := parser.ValidateRaw(raw); err != nil {
		p.metrics.addDrop("invalid_record")
		return nil
	}

	// Product links are unique per crawl; a repeat is a duplicate item.
	if found, _ := p.seen.ContainsOrAdd(raw.Link, struct{}{}); found {
		p.metrics.addDrop("duplicate_link")
		return nil
	}

	record, err := parser.Normalize(raw)
	if err != nil {
		slog.Warn("dropping record with unparseable price",
			slog.String("title", raw.Title),
			slog.Any("error", err),
		)
		p.metrics.addDrop("bad_price")
		return nil
	}

	if !p.targets.Contains(record.Category) {
		p.metrics.addDrop("category_filtered")
		return nil
	}

	p.metrics.incrementProcessed()
	return record
}

func (p *Pipeline) enqueue(raw *models.RawBook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case p.rawCh <- raw:
		return nil
	}
}

func (p *Pipeline) setErr(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return
	}
	p.err = err
	p.closed = true
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.rawCh)
	})
}

func (p *Pipeline) state() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed, p.err
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type metrics struct {
	mu        sync.Mutex
	processed int64
	dropped   map[string]int
}

func newMetrics() metrics {
	return metrics{
		dropped: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addDrop(reason string) {
	m.mu.Lock()
	m.dropped[reason]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	droppedCopy := make(map[string]int, len(m.dropped))
	for k, v := range m.dropped {
		droppedCopy[k] = v
	}

	return map[string]interface{}{
		"processed_records": m.processed,
		"dropped_records":   droppedCopy,
	}
}
