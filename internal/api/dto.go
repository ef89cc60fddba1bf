package api

import "time"

// CreateDocumentRequest is the request body for creating a document.
// A non-empty target creates a link document mirroring that file or URL.
type CreateDocumentRequest struct {
	Name   string `json:"name"`
	Text   string `json:"text,omitempty"`
	Target string `json:"target,omitempty"`
}

// OpenTargetRequest points a document at a new external reference.
type OpenTargetRequest struct {
	Target string `json:"target"`
}

// EditedRequest carries user-edited text from the rendering surface.
type EditedRequest struct {
	Text string `json:"text"`
}

// ConsoleRequest carries a diagnostic console message from the surface.
type ConsoleRequest struct {
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// DocumentDetail is the full document response type.
type DocumentDetail struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Target    string    `json:"target,omitempty"`
	Linked    bool      `json:"linked"`
	Dirty     bool      `json:"dirty"`
	Base      string    `json:"base,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Target    string    `json:"target,omitempty"`
	Linked    bool      `json:"linked"`
	Dirty     bool      `json:"dirty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}
