package web

import (
	"net/http"
	"regexp"
)

const (
	clientCookieName = "dropvault_client"
	clientIDBytes    = 16
	clientMaxAge     = 10 * 365 * 24 * 60 * 60
)

var clientIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// clientSlot returns the browser's credential slot id, issuing a long-lived
// cookie on first visit. The cookie plays the part of browser-local storage:
// it names the slot, the token itself stays server-side.
func clientSlot(w http.ResponseWriter, r *http.Request, secure bool) string {
	if cookie, err := r.Cookie(clientCookieName); err == nil && clientIDPattern.MatchString(cookie.Value) {
		return cookie.Value
	}

	id := generateToken(clientIDBytes)
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   clientMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
	return id
}

// existingClientSlot returns the slot id carried by the request, if any.
func existingClientSlot(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(clientCookieName)
	if err != nil || !clientIDPattern.MatchString(cookie.Value) {
		return "", false
	}
	return cookie.Value, true
}
