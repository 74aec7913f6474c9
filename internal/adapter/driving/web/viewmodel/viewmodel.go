// Package viewmodel holds the display-ready structs the templ components
// render. Values are plain strings; escaping happens in the components.
package viewmodel

// UploadPageViewModel is the state of the upload page for one client.
type UploadPageViewModel struct {
	Title            string
	BannerHTML       string // sanitized HTML, rendered verbatim
	AuthEntryVisible bool
	CSRFToken        string
	UploaderJSON     string
	UploaderTarget   string // element id the widget mounts into, without "#"
	MaxSize          string
	ChunkSize        string
	ExpiryNote       string
}

// ResultBlockViewModel is one rendered upload result.
type ResultBlockViewModel struct {
	Label      string
	LinkLabel  string
	URL        string
	LinkText   string
	Target     string
	ExpiryNote string
}
