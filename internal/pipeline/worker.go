package pipeline

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/model"
)

// Worker rebuilds outlines for scheduled documents.
type Worker struct {
	orch *Orchestrator
	log  *slog.Logger
}

func NewWorker(orch *Orchestrator, log *slog.Logger) *Worker {
	return &Worker{orch: orch, log: log}
}

// Process builds the newest pending text of a document until none is left. A
// document is only ever handed to one worker at a time.
func (w *Worker) Process(docID string) {
	log := w.log.With("doc_id", docID)
	for {
		text, ok := w.orch.next(docID)
		if !ok {
			return
		}
		doc := w.orch.docs.Get(docID)
		if doc == nil {
			log.Debug("document closed before rebuild")
			continue
		}

		start := time.Now()
		_, err := doc.Model.Update(text)
		if errors.Is(err, model.ErrSuperseded) {
			continue
		}
		// Build errors are already reported to the model's subscribers.
		w.orch.stats.Record(time.Since(start).Milliseconds(), err != nil)
	}
}
