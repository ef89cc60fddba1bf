// Package document defines the in-memory Markdown document model.
package document

// Document is the unit of content being edited. For link documents the
// text mirrors an external file or URL named by the target reference.
//
// Mutators perform no I/O and raise no change notification; the session
// controller decides whether a mutation is real and owns the host's
// changed-state signal.
type Document struct {
	text   string
	target string
	linked bool
}

// New creates an unlinked document with the given initial text.
func New(text string) *Document {
	return &Document{text: text}
}

// NewLinked creates a document that mirrors the external target.
func NewLinked(text, target string) *Document {
	return &Document{text: text, target: target, linked: true}
}

// Text returns the current Markdown content.
func (d *Document) Text() string { return d.text }

// SetText replaces the current Markdown content.
func (d *Document) SetText(text string) { d.text = text }

// Target returns the external reference, empty for unlinked documents.
func (d *Document) Target() string {
	if !d.linked {
		return ""
	}
	return d.target
}

// SetTarget replaces the external reference and marks the document linked.
func (d *Document) SetTarget(target string) {
	d.target = target
	d.linked = true
}

// Linked reports whether this document mirrors an external target.
func (d *Document) Linked() bool { return d.linked }
