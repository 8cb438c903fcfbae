package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	eventsWriteWait = 10 * time.Second
	eventsPongWait  = 60 * time.Second
	eventsPingEvery = (eventsPongWait * 9) / 10
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type eventMessage struct {
	Type    string           `json:"type"`
	DocID   string           `json:"doc_id"`
	Outline *outlineResponse `json:"outline,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// handleEvents streams outline updates and build errors of one document over a
// websocket. The current outline is sent first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	doc := s.orchestrator.GetDocument(docID)
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	conn, err := eventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "doc_id", docID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(eventsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})

	writeCh := make(chan eventMessage, 32)
	closed := make(chan struct{})
	var closeOnce sync.Once
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(eventsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				writeClosed(conn, writeCh, docID)
				return
			}
		}
	}()

	updates := doc.Model.OnDidUpdate(func(o *doctree.Outline) {
		v := outlineView(o)
		pushEvent(writeCh, eventMessage{Type: "outline", DocID: docID, Outline: &v})
	})
	defer updates.Unsubscribe()
	failures := doc.Model.OnDidError(func(err error) {
		pushEvent(writeCh, eventMessage{Type: "error", DocID: docID, Error: err.Error()})
	})
	defer failures.Unsubscribe()

	gone := doc.Model.OnDidDestroy(func() {
		closeOnce.Do(func() { close(closed) })
	})
	defer gone.Unsubscribe()
	if s.orchestrator.GetDocument(docID) == nil {
		closeOnce.Do(func() { close(closed) })
	}

	if o := doc.Model.Outline(); o != nil {
		v := outlineView(o)
		pushEvent(writeCh, eventMessage{Type: "outline", DocID: docID, Outline: &v})
	}
	s.log.Info("events subscribed", "doc_id", docID)

	// The client only sends control frames; reading drives the pong handler
	// and detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	cancel()
	<-writerDone
	s.log.Info("events unsubscribed", "doc_id", docID)
}

// writeClosed flushes queued events, tells the client the document is gone and
// closes the connection, which also ends the read loop.
func writeClosed(conn *websocket.Conn, writeCh chan eventMessage, docID string) {
	defer conn.Close()
	deadline := time.Now().Add(eventsWriteWait)
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return
	}
flush:
	for {
		select {
		case msg := <-writeCh:
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		default:
			break flush
		}
	}
	if err := conn.WriteJSON(eventMessage{Type: "closed", DocID: docID}); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "document closed"), deadline)
}

// pushEvent never blocks the model. When the client is slow the oldest queued
// event is dropped.
func pushEvent(writeCh chan eventMessage, msg eventMessage) {
	select {
	case writeCh <- msg:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- msg:
	default:
	}
}
