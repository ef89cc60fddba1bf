// Package session implements the synchronization controller for one open
// Markdown document: it decides when content is loaded from disk, when it
// is written back, when the host's changed-state signal is raised, and
// when the base reference is re-injected into the rendering surface.
package session

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/arnvid/mdlink/internal/apperr"
	"github.com/arnvid/mdlink/internal/document"
	"github.com/arnvid/mdlink/internal/filestore"
	"github.com/arnvid/mdlink/internal/resolver"
)

// Host is the persistence boundary. MarkChanged raises the host's
// "persisted state changed" signal; SaveState persists the document's
// current fields without raising it (mirroring external content is not a
// user edit).
type Host interface {
	MarkChanged()
	SaveState(text, target string, linked bool)
}

// Notifier surfaces non-fatal, user-visible failures (read-only target,
// failed write). Implementations must not block.
type Notifier interface {
	Notify(kind, message string)
}

// Notice kinds passed to Notifier.
const (
	NoticeReadOnly   = "read-only"
	NoticeSaveFailed = "save-failed"
)

// Session owns a Document for the duration of an editing session and is
// its only mutator. Entry points are serialized by a mutex: the HTTP
// surface delivers events from multiple goroutines, and a target open
// must complete its read and base recomputation before a later edit for
// that target is processed.
type Session struct {
	mu        sync.Mutex
	doc       *document.Document
	store     filestore.Store
	binding   *Binding
	host      Host
	notifier  Notifier
	logger    *slog.Logger
	viewReady bool
}

// New creates a session around doc. The binding must already hold a live
// rendering surface; store, host, and notifier are required.
func New(doc *document.Document, store filestore.Store, binding *Binding, host Host, notifier Notifier, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		doc:      doc,
		store:    store,
		binding:  binding,
		host:     host,
		notifier: notifier,
		logger:   logger,
	}
}

// OpenTarget points the document at a new external reference and mirrors
// its content. Switching the reference marks the host state changed; the
// incidental content refresh never does. A missing file is a valid state
// for a not-yet-created note and yields empty content without a notice.
func (s *Session) OpenTarget(newTarget string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetChanged := !s.doc.Linked() || s.doc.Target() != newTarget
	if targetChanged {
		s.doc.SetTarget(newTarget)
		s.host.MarkChanged()
		s.logger.Info("session: target changed", slog.String("target", newTarget))
	}

	content, err := s.store.ReadText(newTarget)
	if err != nil {
		s.logger.Debug("session: no content at target", slog.String("target", newTarget), slog.String("error", err.Error()))
		content = ""
	}
	if content != s.doc.Text() {
		s.doc.SetText(content)
	}

	s.binding.PushText(s.doc.Text())
	if s.viewReady {
		s.injectBase()
	}
	s.host.SaveState(s.doc.Text(), s.doc.Target(), s.doc.Linked())
}

// OnViewEdited receives user-edited text from the rendering surface.
// Text identical to the current content is dropped: surfaces re-send
// unchanged content on focus loss, and that must trigger neither a dirty
// mark nor a write. Real edits update the document, raise the changed
// signal, and for local link targets are written back to disk.
func (s *Session) OnViewEdited(edited string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if edited == s.doc.Text() {
		return
	}

	s.doc.SetText(edited)
	s.host.MarkChanged()
	s.host.SaveState(s.doc.Text(), s.doc.Target(), s.doc.Linked())

	if !s.doc.Linked() {
		return
	}
	target := s.doc.Target()
	if target == "" || isRemote(target) {
		// Remote targets are never written back; the edit lives in the
		// host's own persistence only.
		return
	}

	if !s.store.IsWritable(target) {
		s.logger.Warn("session: target is read-only", slog.String("target", target))
		s.notifier.Notify(NoticeReadOnly, "Cannot save to read-only file")
		return
	}
	if err := s.store.WriteText(target, edited); err != nil {
		s.logger.Warn("session: save failed", slog.String("target", target), slog.String("error", err.Error()))
		// The writability probe runs first, but the file can still turn
		// read-only between probe and write.
		if errors.Is(err, apperr.ErrReadOnly) {
			s.notifier.Notify(NoticeReadOnly, "Cannot save to read-only file")
		} else {
			s.notifier.Notify(NoticeSaveFailed, "Failed to save markdown file to disk")
		}
		return
	}
	s.logger.Debug("session: saved", slog.String("target", target))
}

// OnViewLoaded fires when the rendering surface finishes loading its
// template. From here on script injection is safe; the base reference is
// injected for the case where the target was set before the template
// finished loading, and the current text is re-pushed because the
// template starts out empty.
func (s *Session) OnViewLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewReady = true
	if s.doc.Linked() {
		s.injectBase()
	}
	s.binding.PushText(s.doc.Text())
}

// OnConsoleMessage logs diagnostics emitted by the rendering surface.
func (s *Session) OnConsoleMessage(message, source string, line int) {
	s.logger.Warn("surface console",
		slog.String("message", message),
		slog.String("source", source),
		slog.Int("line", line))
}

// ReloadTarget re-mirrors external content after the target file changed
// on disk. Pure mirror semantics: no changed-state signal, no notice on
// a vanished file.
func (s *Session) ReloadTarget() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.Linked() {
		return
	}
	content, err := s.store.ReadText(s.doc.Target())
	if err != nil {
		content = ""
	}
	if content == s.doc.Text() {
		return
	}
	s.doc.SetText(content)
	s.binding.PushText(content)
	s.host.SaveState(s.doc.Text(), s.doc.Target(), s.doc.Linked())
	s.logger.Debug("session: reloaded external content", slog.String("target", s.doc.Target()))
}

// Text returns the document's current content.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Text()
}

// Target returns the document's external reference, empty when unlinked.
func (s *Session) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Target()
}

// LocalTarget returns the target path when the session mirrors a local
// file, and "" otherwise. Used by the target watcher.
func (s *Session) LocalTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.doc.Target()
	if !s.doc.Linked() || t == "" || isRemote(t) {
		return ""
	}
	return t
}

// ViewReady reports whether the surface completed its initial load.
func (s *Session) ViewReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewReady
}

// injectBase recomputes the base reference and upserts it in the
// surface. Callers hold s.mu.
func (s *Session) injectBase() {
	base, ok := resolver.ComputeBase(s.doc.Target())
	if !ok {
		return
	}
	s.binding.InjectBase(base)
}

// isRemote reports whether a target is a remote reference. Purely
// syntactic, no probing.
func isRemote(target string) bool {
	return strings.Contains(target, "://")
}
