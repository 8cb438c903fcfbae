package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/model"
	"github.com/dgallion1/docoutline/internal/parser"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrQueueFull        = errors.New("update queue is full")
	ErrStopped          = errors.New("orchestrator stopped")
)

// Publisher receives outline changes outside the process.
type Publisher interface {
	PublishOutline(ctx context.Context, o *doctree.Outline) error
	DeleteOutline(ctx context.Context, docID string) error
}

type publishJob struct {
	outline *doctree.Outline
	deleted string
}

// Orchestrator owns the open documents and schedules their rebuilds.
type Orchestrator struct {
	docs      *DocumentStore
	queue     chan string
	publishCh chan publishJob
	publisher Publisher
	stats     *BuildStats
	log       *slog.Logger
	cfg       config.Config

	mu        sync.Mutex
	pending   map[string]string // newest unprocessed text per document
	scheduled map[string]bool   // queued or being processed
	maxDepth  int
	stopped   bool

	cancel  context.CancelFunc
	workers sync.WaitGroup
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. publisher may be nil.
func NewOrchestrator(cfg config.Config, publisher Publisher, log *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		queue:     make(chan string, cfg.MaxQueueSize),
		publishCh: make(chan publishJob, cfg.MaxQueueSize),
		publisher: publisher,
		stats:     NewBuildStats(cfg.StatsWindow),
		log:       log,
		cfg:       cfg,
		pending:   make(map[string]string),
		scheduled: make(map[string]bool),
		maxDepth:  cfg.MaxHeadingDepth,
	}
	o.docs = NewDocumentStore(cfg.MaxDocuments, cfg.DocumentTTL, o.evicted)
	return o
}

// Start launches worker goroutines. Workers run until Stop has drained the
// queue; ctx only bounds the publisher.
func (o *Orchestrator) Start(ctx context.Context) {
	pubCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.workers.Add(1)
		go func() {
			defer o.workers.Done()
			w := NewWorker(o, o.log)
			for id := range o.queue {
				w.Process(id)
			}
		}()
	}

	if o.publisher != nil {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.publishLoop(pubCtx)
		}()
	}
}

// Stop rejects new submits, waits until every queued document has been
// rebuilt, then flushes pending publishes and stops the publisher.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	o.workers.Wait()
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Open registers a document and builds its first outline synchronously. An
// empty dialect selects one from the filename. The document stays open even
// when the first build fails; the error is returned alongside it.
func (o *Orchestrator) Open(filename string, dialect parser.Dialect, text string) (*Document, *doctree.Outline, error) {
	var (
		scanner parser.Scanner
		err     error
	)
	if dialect != "" {
		scanner, err = parser.ForDialect(dialect)
	} else {
		scanner, dialect, err = parser.ForFile(filename)
	}
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	m := model.New(id, scanner,
		model.WithLogger(o.log),
		model.WithDialect(string(dialect)),
		model.WithMaxDepth(o.MaxDepth()),
	)
	if o.publisher != nil {
		m.OnDidUpdate(func(out *doctree.Outline) { o.enqueuePublish(publishJob{outline: out}) })
	}

	now := time.Now()
	doc := &Document{
		ID:        id,
		Filename:  filename,
		Dialect:   dialect,
		Model:     m,
		CreatedAt: now,
		updatedAt: now,
	}
	o.docs.Put(doc)
	o.log.Info("document opened", "doc_id", id, "filename", filename, "dialect", dialect)

	start := time.Now()
	out, err := m.Update(text)
	o.stats.Record(time.Since(start).Milliseconds(), err != nil)
	return doc, out, err
}

// Submit schedules a rebuild with new text. Texts submitted while a rebuild is
// queued or running replace each other; only the newest one is built.
func (o *Orchestrator) Submit(docID, text string) error {
	doc := o.docs.Get(docID)
	if doc == nil {
		return ErrDocumentNotFound
	}
	o.docs.Put(doc)
	doc.touch()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}
	o.pending[docID] = text
	if o.scheduled[docID] {
		return nil
	}
	select {
	case o.queue <- docID:
		o.scheduled[docID] = true
		return nil
	default:
		delete(o.pending, docID)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// next hands the newest pending text for docID to a worker. When nothing is
// pending the document is unscheduled.
func (o *Orchestrator) next(docID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	text, ok := o.pending[docID]
	if !ok {
		delete(o.scheduled, docID)
		return "", false
	}
	delete(o.pending, docID)
	return text, true
}

// SetMaxDepth changes the depth limit for every open document and rebuilds them.
func (o *Orchestrator) SetMaxDepth(depth int) {
	o.mu.Lock()
	if depth < 1 {
		depth = config.DefaultMaxHeadingDepth
	}
	if depth == o.maxDepth {
		o.mu.Unlock()
		return
	}
	o.maxDepth = depth
	o.mu.Unlock()

	o.log.Info("rebuilding all documents", "max_depth", depth, "documents", o.docs.Len())
	for _, doc := range o.docs.List() {
		start := time.Now()
		_, err := doc.Model.SetMaxDepth(depth)
		if errors.Is(err, model.ErrSuperseded) {
			continue
		}
		o.stats.Record(time.Since(start).Milliseconds(), err != nil)
	}
}

// MaxDepth returns the current depth limit.
func (o *Orchestrator) MaxDepth() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxDepth
}

// Close closes a document and forgets its outline.
func (o *Orchestrator) Close(docID string) error {
	if !o.docs.Remove(docID) {
		return ErrDocumentNotFound
	}
	return nil
}

// GetDocument returns an open document by ID, or nil.
func (o *Orchestrator) GetDocument(id string) *Document {
	return o.docs.Get(id)
}

// Documents returns the open documents.
func (o *Orchestrator) Documents() []*Document {
	return o.docs.List()
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the build latency tracker.
func (o *Orchestrator) Stats() *BuildStats {
	return o.stats
}

func (o *Orchestrator) evicted(d *Document) {
	o.mu.Lock()
	delete(o.pending, d.ID)
	o.mu.Unlock()

	o.log.Info("document closed", "doc_id", d.ID)
	if o.publisher != nil {
		o.enqueuePublish(publishJob{deleted: d.ID})
	}
}

func (o *Orchestrator) enqueuePublish(job publishJob) {
	select {
	case o.publishCh <- job:
	default:
		o.log.Warn("publish queue full, dropping outline event")
	}
}

func (o *Orchestrator) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			o.flushPublishes()
			return
		case job := <-o.publishCh:
			pubCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			o.publish(pubCtx, job)
			cancel()
		}
	}
}

// flushPublishes sends what is still buffered when the publisher stops.
func (o *Orchestrator) flushPublishes() {
	for {
		select {
		case job := <-o.publishCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			o.publish(ctx, job)
			cancel()
		default:
			return
		}
	}
}

func (o *Orchestrator) publish(ctx context.Context, job publishJob) {
	var err error
	if job.outline != nil {
		err = o.publisher.PublishOutline(ctx, job.outline)
	} else {
		err = o.publisher.DeleteOutline(ctx, job.deleted)
	}
	if err != nil {
		o.log.Warn("publish outline failed", "error", err)
	}
}
