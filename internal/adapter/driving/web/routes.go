package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// The upload page is served at /, its form and fragment endpoints under /app/.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.UploadPage)
	mux.HandleFunc("POST /app/token", h.SaveToken)
	mux.HandleFunc("POST /app/results", h.Results)
	mux.HandleFunc("GET /app/uploader.json", h.UploaderConfig)
}
