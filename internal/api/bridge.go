package api

import (
	"log/slog"

	"github.com/arnvid/mdlink/internal/docstore"
	"github.com/arnvid/mdlink/internal/document"
	"github.com/arnvid/mdlink/internal/filestore"
	"github.com/arnvid/mdlink/internal/session"
	"github.com/arnvid/mdlink/internal/sse"
)

// sseSurface implements session.Surface over the SSE broker: scripts are
// relayed as session.exec events to the browser tab displaying the
// document, which runs them against its loaded template.
type sseSurface struct {
	docID  string
	broker *sse.Broker
}

func (s *sseSurface) Exec(script string) error {
	s.broker.PublishExec(s.docID, script)
	return nil
}

// storeHost implements the host persistence boundary for one document:
// MarkChanged raises the dirty flag and announces it, SaveState persists
// the current fields quietly.
type storeHost struct {
	docID  string
	db     docstore.Store
	broker *sse.Broker
	logger *slog.Logger
}

func (h *storeHost) MarkChanged() {
	if err := h.db.MarkChanged(h.docID); err != nil {
		h.logger.Warn("host: mark changed failed", slog.String("doc", h.docID), slog.String("error", err.Error()))
		return
	}
	h.broker.PublishChanged(h.docID)
}

func (h *storeHost) SaveState(text, target string, linked bool) {
	if err := h.db.SaveState(h.docID, text, target, linked); err != nil {
		h.logger.Warn("host: save state failed", slog.String("doc", h.docID), slog.String("error", err.Error()))
	}
}

// sseNotifier surfaces non-fatal failures as session.notice events.
type sseNotifier struct {
	docID  string
	broker *sse.Broker
}

func (n *sseNotifier) Notify(kind, message string) {
	n.broker.PublishNotice(n.docID, kind, message)
}

// NewSessionFactory wires a session for a stored document: the document
// model is hydrated from the store, the SSE broker becomes its rendering
// surface, and the document store backs the host boundary. A nil broker
// means no rendering surface capability, which fails session
// construction rather than producing a half-alive editor.
func NewSessionFactory(db docstore.Store, store filestore.Store, broker *sse.Broker, logger *slog.Logger) session.Factory {
	return func(docID string) (*session.Session, error) {
		row, err := db.Get(docID)
		if err != nil {
			return nil, err
		}

		var doc *document.Document
		if row.Linked {
			doc = document.NewLinked(row.Text, row.Target)
		} else {
			doc = document.New(row.Text)
		}

		var surface session.Surface
		if broker != nil {
			surface = &sseSurface{docID: docID, broker: broker}
		}
		binding, err := session.NewBinding(surface, logger)
		if err != nil {
			return nil, err
		}

		host := &storeHost{docID: docID, db: db, broker: broker, logger: logger}
		notifier := &sseNotifier{docID: docID, broker: broker}
		return session.New(doc, store, binding, host, notifier, logger), nil
	}
}
