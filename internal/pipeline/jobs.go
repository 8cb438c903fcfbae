package pipeline

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/model"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Document is an open document and the model that keeps its outline.
type Document struct {
	ID        string
	Filename  string
	Dialect   parser.Dialect
	Model     *model.Model
	CreatedAt time.Time

	mu        sync.Mutex
	updatedAt time.Time
	submits   int
}

func (d *Document) touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updatedAt = time.Now()
	d.submits++
}

// DocumentSnapshot is a read-only, JSON-safe copy of document state.
type DocumentSnapshot struct {
	ID          string         `json:"doc_id"`
	Filename    string         `json:"filename"`
	Dialect     parser.Dialect `json:"dialect"`
	Revision    uint64         `json:"revision"`
	Headings    int            `json:"headings"`
	MaxDepth    int            `json:"max_depth"`
	ContentHash string         `json:"content_hash,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	Updates     int            `json:"updates"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the document state.
func (d *Document) Snapshot() DocumentSnapshot {
	d.mu.Lock()
	updatedAt, submits := d.updatedAt, d.submits
	d.mu.Unlock()

	snap := DocumentSnapshot{
		ID:        d.ID,
		Filename:  d.Filename,
		Dialect:   d.Dialect,
		MaxDepth:  d.Model.MaxDepth(),
		Updates:   submits,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
	}
	if o := d.Model.Outline(); o != nil {
		snap.Revision = o.Revision
		snap.Headings = doctree.Count(o.Headings)
		snap.ContentHash = o.ContentHash
	}
	if err := d.Model.LastError(); err != nil {
		snap.LastError = err.Error()
	}
	return snap
}

// DocumentStore is a bounded registry of open documents. Documents idle for
// longer than the TTL, or pushed out by newer ones, are evicted and destroyed.
type DocumentStore struct {
	cache *expirable.LRU[string, *Document]
}

// NewDocumentStore creates a store. onEvict runs after a document's model has
// been destroyed; it may be nil.
func NewDocumentStore(size int, ttl time.Duration, onEvict func(*Document)) *DocumentStore {
	return &DocumentStore{
		cache: expirable.NewLRU[string, *Document](size, func(_ string, d *Document) {
			d.Model.Destroy()
			if onEvict != nil {
				onEvict(d)
			}
		}, ttl),
	}
}

// Put adds or refreshes a document.
func (s *DocumentStore) Put(d *Document) {
	s.cache.Add(d.ID, d)
}

// Get returns a document by ID, or nil.
func (s *DocumentStore) Get(id string) *Document {
	d, ok := s.cache.Get(id)
	if !ok {
		return nil
	}
	return d
}

// Remove closes a document. It reports whether the document was open.
func (s *DocumentStore) Remove(id string) bool {
	return s.cache.Remove(id)
}

// List returns the open documents, oldest first.
func (s *DocumentStore) List() []*Document {
	return s.cache.Values()
}

// Len returns the number of open documents.
func (s *DocumentStore) Len() int {
	return s.cache.Len()
}
