package session

import (
	"log/slog"

	"github.com/arnvid/mdlink/internal/apperr"
	"github.com/arnvid/mdlink/internal/resolver"
)

// Surface is the narrow capability the session needs from the rendering
// surface: execute a script against its loaded content. The HTTP/SSE
// surface implements it by relaying scripts to the browser, which
// navigates to the editor template on its own.
type Surface interface {
	Exec(script string) error
}

// Binding is the conduit between the controller and the rendering
// surface. All script construction goes through the resolver package so
// every injection site shares one script contract.
type Binding struct {
	surface Surface
	logger  *slog.Logger
}

// NewBinding wraps a rendering surface. A nil surface is fatal: an
// editing session cannot proceed without one.
func NewBinding(surface Surface, logger *slog.Logger) (*Binding, error) {
	if surface == nil {
		return nil, apperr.ErrMissingCapability
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Binding{surface: surface, logger: logger}, nil
}

// PushText replaces the editable text in the surface. Failures are
// diagnostics only; the in-memory document is already up to date.
func (b *Binding) PushText(text string) {
	if err := b.surface.Exec(resolver.SetTextScript(text)); err != nil {
		b.logger.Warn("binding: push text failed", slog.String("error", err.Error()))
	}
}

// InjectBase upserts the surface's single base-reference element. The
// script is idempotent, so repeated injection with the same base leaves
// exactly one element in place.
func (b *Binding) InjectBase(base string) {
	if err := b.surface.Exec(resolver.BaseScript(base)); err != nil {
		b.logger.Warn("binding: inject base failed", slog.String("error", err.Error()))
	}
}
