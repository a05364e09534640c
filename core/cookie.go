package core

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName carries the signed token on every authenticated request.
const SessionCookieName = "user"

// CookieWriter attaches and clears the session cookie with fixed security
// attributes. Logout is purely client-directed: clearing the cookie is the
// only invalidation mechanism.
type CookieWriter struct {
	secure   bool
	sameSite http.SameSite
	maxAge   time.Duration
}

func NewCookieWriter(cfg Config, tokenTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		secure:   cfg.Production(),
		sameSite: sameSiteFromString(cfg.CookieSameSite),
		maxAge:   tokenTTL,
	}
}

// Set attaches the token under name with http-only, secure-in-production,
// same-site and a max-age matching the token expiry.
func (w *CookieWriter) Set(rw http.ResponseWriter, name, token string) {
	http.SetCookie(rw, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(w.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: w.sameSite,
	})
}

// Clear issues an immediately expiring cookie so the client discards it.
func (w *CookieWriter) Clear(rw http.ResponseWriter, name string) {
	http.SetCookie(rw, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: w.sameSite,
	})
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
