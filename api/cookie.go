package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

// SessionCookies reads and writes the session id cookie that pins a
// browser to its drawing room across visits.
type SessionCookies struct {
	name   string
	maxAge time.Duration
}

// NewSessionCookies creates a cookie manager.
func NewSessionCookies(name string, maxAge time.Duration) *SessionCookies {
	return &SessionCookies{name: name, maxAge: maxAge}
}

// Extract returns the session id from the request cookie, or empty.
func (sc *SessionCookies) Extract(r *http.Request) string {
	cookie, err := r.Cookie(sc.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Persist writes the session id cookie. The cookie is intentionally not
// HttpOnly: the client script reads it to reconnect to the same room.
func (sc *SessionCookies) Persist(w http.ResponseWriter, sessionID string) {
	if sessionID == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sc.name,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sc.maxAge.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

// Ensure returns the request's session id, minting one via factory when the
// cookie is absent, and persists it either way.
func (sc *SessionCookies) Ensure(w http.ResponseWriter, r *http.Request, factory func() string) string {
	sessionID := sc.Extract(r)
	if sessionID == "" && factory != nil {
		sessionID = factory()
	}
	sc.Persist(w, sessionID)
	return sessionID
}

// GenerateSessionID mints a random 10-character hex session id.
func GenerateSessionID() string {
	buf := make([]byte, 5)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
