package core

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, authService *AuthService, issuer *TokenIssuer, cookies *CookieWriter, guard *Guard, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(OriginMiddleware(cfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The guard runs before every auth handler; the quota role comes from
	// the session cookie when present.
	auth := r.Group("/api/auth", SecurityMiddleware(guard, issuer))
	{
		auth.POST("/signup", func(c *gin.Context) {
			var req signupRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Validation failed",
					"details": formatValidationError(err),
				})
				return
			}

			user, err := authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
			if err != nil {
				if errors.Is(err, ErrDuplicateEmail) {
					respondMessage(c, http.StatusConflict, "User with this email already exists")
					return
				}
				logger.Error("signup failed", "error", err)
				respondError(c, http.StatusInternalServerError, "Internal server error", "Something went wrong")
				return
			}

			token, err := issuer.Sign(user.ID, user.Email, user.Role)
			if err != nil {
				logger.Error("signup token issue failed", "email", user.Email, "error", err)
				respondError(c, http.StatusInternalServerError, "Internal server error", "Something went wrong")
				return
			}
			cookies.Set(c.Writer, SessionCookieName, token)

			logger.Info("user signed up", "email", user.Email, "role", user.Role)
			c.JSON(http.StatusCreated, gin.H{
				"message": "User signed up successfully",
				"user": gin.H{
					"id":    user.ID,
					"name":  user.Name,
					"email": user.Email,
					"role":  user.Role,
				},
			})
		})

		auth.POST("/signin", func(c *gin.Context) {
			var req signinRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Validation failed",
					"details": formatValidationError(err),
				})
				return
			}

			user, err := authService.Authenticate(c.Request.Context(), req.Email, req.Password)
			if err != nil {
				// One generic response for both failure kinds so callers
				// cannot probe which factor was wrong.
				if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword) {
					respondMessage(c, http.StatusUnauthorized, "Invalid email or password")
					return
				}
				logger.Error("signin failed", "error", err)
				respondError(c, http.StatusInternalServerError, "Internal server error", "Something went wrong")
				return
			}

			token, err := issuer.Sign(user.ID, user.Email, user.Role)
			if err != nil {
				logger.Error("signin token issue failed", "email", user.Email, "error", err)
				respondError(c, http.StatusInternalServerError, "Internal server error", "Something went wrong")
				return
			}
			cookies.Set(c.Writer, SessionCookieName, token)

			logger.Info("user signed in", "email", user.Email)
			c.JSON(http.StatusOK, gin.H{
				"message": "User signed in successfully",
				"user": gin.H{
					"id":    user.ID,
					"name":  user.Name,
					"email": user.Email,
					"role":  user.Role,
				},
			})
		})

		auth.POST("/signout", func(c *gin.Context) {
			cookies.Clear(c.Writer, SessionCookieName)
			logger.Info("user signed out")
			respondMessage(c, http.StatusOK, "User signed out successfully")
		})
	}

	return r
}
