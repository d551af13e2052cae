package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/session"
)

type SessionHandler struct {
	store  session.Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionHandler(store session.Store, ttl time.Duration, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "session_handler"),
		now:    time.Now,
	}
}

type sessionStatus struct {
	Provider  string    `json:"provider"`
	Cookies   int       `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Put stores the cookie context for the provider in the path. Cookie values
// are never echoed back.
func (h *SessionHandler) Put(c echo.Context) error {
	var s session.Session
	if err := c.Bind(&s); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "invalid_request",
			Detail: "Failed to parse request body: " + err.Error(),
			Code:   http.StatusUnprocessableEntity,
		})
	}
	s.Provider = c.Param("provider")

	if len(s.Cookies) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "validation_error",
			Detail: "cookies must not be empty",
			Code:   http.StatusUnprocessableEntity,
		})
	}

	now := h.now()
	session.Prepare(&s, now, h.ttl)
	if !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now) {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "validation_error",
			Detail: "expires_at must be in the future",
			Code:   http.StatusUnprocessableEntity,
		})
	}

	if err := h.store.Save(c.Request().Context(), &s); err != nil {
		h.logger.Error("failed to save session", "provider", s.Provider, "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:  "session_store_error",
			Detail: err.Error(),
			Code:   http.StatusInternalServerError,
		})
	}

	h.logger.Info("session stored", "provider", s.Provider, "cookies", len(s.Cookies), "expires_at", s.ExpiresAt)
	return c.JSON(http.StatusOK, sessionStatus{
		Provider:  s.Provider,
		Cookies:   len(s.Cookies),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	})
}
