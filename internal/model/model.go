// Package model keeps the outline of one open document current. Every update
// rescans the whole text, rebuilds the forest from scratch and publishes it to
// subscribers; failures are published as errors and never escape as panics.
package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/event"
	"github.com/dgallion1/docoutline/internal/lineindex"
	"github.com/dgallion1/docoutline/internal/outline"
)

// ErrSuperseded is returned when a newer revision settled, successfully or not,
// while a build was in flight. The stale result is dropped.
var ErrSuperseded = errors.New("build superseded by a newer revision")

// Scanner finds heading occurrences in a full document text.
type Scanner interface {
	Scan(text string) ([]doctree.RawHeading, error)
}

// Build stages reported in BuildError.
const (
	StageScan  = "scan"
	StageBuild = "build"
)

// BuildError is delivered to error subscribers when an update fails.
type BuildError struct {
	DocID    string
	Revision uint64
	Stage    string
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s %s (revision %d): %v", e.Stage, e.DocID, e.Revision, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Model is the outline coordinator for a single document.
type Model struct {
	docID   string
	dialect string
	scanner Scanner
	log     *slog.Logger
	now     func() time.Time

	// buildMu keeps builds for this document from overlapping.
	buildMu sync.Mutex

	mu            sync.RWMutex
	text          string
	hasText       bool
	maxDepth      int
	revision      uint64
	settled       uint64 // newest revision whose result, outline or error, was applied
	outline       *doctree.Outline
	publishedText string
	lastErr       error

	updated   event.Emitter[*doctree.Outline]
	failed    event.Emitter[error]
	destroyed event.Emitter[struct{}]
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMaxDepth sets the initial depth limit; values below 1 select the default.
func WithMaxDepth(depth int) Option {
	return func(m *Model) { m.maxDepth = normalizeDepth(depth) }
}

// WithDialect records the dialect name on published outlines.
func WithDialect(dialect string) Option {
	return func(m *Model) { m.dialect = dialect }
}

// WithClock overrides time.Now for BuiltAt stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New creates a model. No build happens until Update is called.
func New(docID string, scanner Scanner, opts ...Option) *Model {
	m := &Model{
		docID:    docID,
		scanner:  scanner,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		maxDepth: outline.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("doc_id", docID)
	return m
}

// DocID returns the document identifier.
func (m *Model) DocID() string { return m.docID }

// Dialect returns the heading dialect name.
func (m *Model) Dialect() string { return m.dialect }

// OnDidUpdate registers fn for every published outline.
func (m *Model) OnDidUpdate(fn func(*doctree.Outline)) *event.Subscription {
	return m.updated.On(fn)
}

// OnDidError registers fn for every failed update.
func (m *Model) OnDidError(fn func(error)) *event.Subscription {
	return m.failed.On(fn)
}

// OnDidDestroy registers fn to run once when the model is destroyed.
func (m *Model) OnDidDestroy(fn func()) *event.Subscription {
	return m.destroyed.On(func(struct{}) { fn() })
}

// Update replaces the document text and rebuilds the outline.
func (m *Model) Update(text string) (*doctree.Outline, error) {
	m.mu.Lock()
	m.text = text
	m.hasText = true
	m.revision++
	rev, depth := m.revision, m.maxDepth
	m.mu.Unlock()

	return m.rebuild(rev, text, depth)
}

// Rebuild rebuilds from the current text. It is a no-op before the first Update.
func (m *Model) Rebuild() (*doctree.Outline, error) {
	m.mu.Lock()
	if !m.hasText {
		m.mu.Unlock()
		return nil, nil
	}
	m.revision++
	rev, text, depth := m.revision, m.text, m.maxDepth
	m.mu.Unlock()

	return m.rebuild(rev, text, depth)
}

// SetMaxDepth changes the depth limit and rebuilds when it actually changed.
// Zero or negative values select the default.
func (m *Model) SetMaxDepth(depth int) (*doctree.Outline, error) {
	depth = normalizeDepth(depth)
	m.mu.Lock()
	if depth == m.maxDepth {
		m.mu.Unlock()
		return m.Outline(), nil
	}
	m.maxDepth = depth
	m.mu.Unlock()

	m.log.Info("max heading depth changed", "max_depth", depth)
	return m.Rebuild()
}

// MaxDepth returns the current depth limit.
func (m *Model) MaxDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxDepth
}

// Outline returns the last successfully built outline, or nil.
func (m *Model) Outline() *doctree.Outline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outline
}

// Snapshot returns the last outline together with the text it was built from.
func (m *Model) Snapshot() (*doctree.Outline, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outline, m.publishedText
}

// LastError returns the error of the most recent update, or nil after a success.
func (m *Model) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Destroy notifies destroy subscribers, then drops all subscribers and the
// held outline.
func (m *Model) Destroy() {
	m.destroyed.Emit(struct{}{})
	m.destroyed.Clear()
	m.updated.Clear()
	m.failed.Clear()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.outline = nil
	m.text = ""
	m.publishedText = ""
	m.hasText = false
}

func (m *Model) rebuild(rev uint64, text string, depth int) (*doctree.Outline, error) {
	start := time.Now()
	m.buildMu.Lock()
	out, err := m.build(rev, text, depth)

	m.mu.Lock()
	if settled := m.settled; rev < settled {
		m.mu.Unlock()
		m.buildMu.Unlock()
		m.log.Debug("dropping superseded build", "revision", rev, "settled", settled)
		return nil, ErrSuperseded
	}
	m.settled = rev
	if err != nil {
		m.lastErr = err
	} else {
		m.outline = out
		m.publishedText = text
		m.lastErr = nil
	}
	m.mu.Unlock()
	// Subscribers run without the build lock so they may update the model.
	m.buildMu.Unlock()

	if err != nil {
		m.log.Error("outline build failed", "revision", rev, "error", err)
		if m.isSettled(rev) {
			m.failed.Emit(err)
		}
		return nil, err
	}

	m.log.Info("outline updated",
		"revision", rev,
		"headings", doctree.Count(out.Headings),
		"max_depth", depth,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if m.isSettled(rev) {
		m.updated.Emit(out)
	}
	return out, nil
}

// isSettled reports whether rev is still the newest applied revision.
func (m *Model) isSettled(rev uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settled == rev
}

// build runs scan then build. Panics in either stage are converted to errors.
func (m *Model) build(rev uint64, text string, depth int) (out *doctree.Outline, err error) {
	stage := StageScan
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &BuildError{DocID: m.docID, Revision: rev, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	raw, err := m.scanner.Scan(text)
	if err != nil {
		return nil, &BuildError{DocID: m.docID, Revision: rev, Stage: stage, Err: err}
	}

	stage = StageBuild
	headings, err := outline.Build(raw, depth)
	if err != nil {
		return nil, &BuildError{DocID: m.docID, Revision: rev, Stage: stage, Err: err}
	}

	return &doctree.Outline{
		DocID:       m.docID,
		Revision:    rev,
		Dialect:     m.dialect,
		MaxDepth:    depth,
		ContentHash: ContentHashHex([]byte(text)),
		DocumentEnd: lineindex.New(text).End(),
		BuiltAt:     m.now(),
		Headings:    headings,
	}, nil
}

func normalizeDepth(depth int) int {
	if depth < 1 {
		return outline.DefaultMaxDepth
	}
	return depth
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
