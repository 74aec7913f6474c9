package model

import "time"

// UploadResult is a single file outcome reported by the upload widget.
type UploadResult struct {
	Name string `json:"name"`
	URL  string `json:"uploadURL"`
}

// Batch carries every file outcome of one upload session, as delivered by the
// widget's "complete" event.
type Batch struct {
	Successful []UploadResult `json:"successful"`
	Failed     []UploadResult `json:"failed"`
}

// ResultBlock is the display unit rendered for one successful upload.
type ResultBlock struct {
	Name       string
	Label      string
	LinkLabel  string
	URL        string
	LinkText   string
	Target     string
	ExpiryNote string
}

// FileRecord is the server-side ledger entry for an upload received by the
// tus endpoint.
type FileRecord struct {
	ID          string
	Name        string
	Size        int64
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// IsComplete reports whether the upload finished receiving data.
func (f FileRecord) IsComplete() bool {
	return f.CompletedAt != nil
}

// UploadEventKind identifies the lifecycle transition of an upload.
type UploadEventKind string

const (
	UploadCreated    UploadEventKind = "created"
	UploadCompleted  UploadEventKind = "completed"
	UploadTerminated UploadEventKind = "terminated"
)

// UploadEvent is a transport-neutral notification about an upload.
type UploadEvent struct {
	Kind   UploadEventKind
	Upload FileRecord
}
