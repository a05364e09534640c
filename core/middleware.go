package core

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityMiddleware runs the guard before handlers. The quota role comes
// from the session cookie when it carries a valid token, else "guest".
// Deny reasons map to 403 with a reason-specific message; a guard failure is
// a 500, never an open gate dressed as 403.
func SecurityMiddleware(guard *Guard, issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleGuest
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			if claims, err := issuer.Verify(cookie); err == nil {
				role = claims.Role
			}
		}

		decision, err := guard.Evaluate(c.Request.Context(), RequestInfo{
			IP:        c.ClientIP(),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RawQuery:  c.Request.URL.RawQuery,
			UserAgent: c.Request.UserAgent(),
		}, role)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Internal server error", "Something went wrong")
			c.Abort()
			return
		}

		if !decision.Allowed {
			switch decision.Reason {
			case DenyBot:
				respondError(c, http.StatusForbidden, "Forbidden", "Automated requests are not allowed.")
			case DenyShield:
				respondError(c, http.StatusForbidden, "Forbidden", "Request blocked by security policy.")
			default:
				respondError(c, http.StatusForbidden, "Forbidden", "Rate limit exceeded. Slow down.")
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// OriginMiddleware validates Origin/Referer against the allowed list and sets
// CORS headers. Requests without an Origin header (same-origin navigation)
// pass through.
func OriginMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			if referer := c.GetHeader("Referer"); referer != "" {
				if u, err := url.Parse(referer); err == nil {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}

		if !isAllowed(origin) {
			respondError(c, http.StatusForbidden, "Forbidden", "origin not allowed")
			c.Abort()
			return
		}

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions && origin != "" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}
