package httphandler

import (
	"crypto/subtle"
	"net/http"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// RequireUploadToken guards the upload endpoint: requests that create, write
// or delete uploads must carry the shared secret in the X-Auth-Token header.
// Reads (HEAD, GET, OPTIONS) pass so offset lookups for resumption and downloads work.
func RequireUploadToken(secret string, metrics EdgeMetrics, next http.Handler) http.Handler {
	want := []byte(secret)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodDelete:
			got := []byte(r.Header.Get(model.AuthHeader))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				if metrics != nil {
					metrics.AuthRejected(r.Method)
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
