package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightcrawl/internal/cache"
	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/session"
)

type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

type SearchHandler struct {
	searcher Searcher
	cache    cache.Cache
	logger   *slog.Logger
	now      func() time.Time
}

func NewSearchHandler(s Searcher, c cache.Cache, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &SearchHandler{
		searcher: s,
		cache:    c,
		logger:   logger.With("component", "search_handler"),
		now:      time.Now,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "invalid_request",
			Detail: "Failed to parse request body: " + err.Error(),
			Code:   http.StatusUnprocessableEntity,
		})
	}

	if err := req.Validate(h.now()); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "validation_error",
			Detail: err.Error(),
			Code:   http.StatusUnprocessableEntity,
		})
	}

	if cached, found := h.cache.Get(ctx, req); found {
		cached.SearchStats.CacheHit = true
		cached.SearchStats.SearchTimeMs = time.Since(startTime).Milliseconds()
		return c.JSON(http.StatusOK, cached)
	}

	resp, err := h.searcher.Search(ctx, req)
	if err != nil {
		status, body := errorResponse(err)
		h.logger.Warn("search rejected", "status", status, "error", err)
		return c.JSON(status, body)
	}

	if err := h.cache.Set(ctx, req, resp); err != nil {
		h.logger.Warn("failed to cache search response", "error", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// errorResponse maps errors that escape a search to their HTTP form.
func errorResponse(err error) (int, models.ErrorResponse) {
	var (
		validationErr models.ValidationError
		sessionErr    *session.SessionError
		captchaErr    *crawler.CaptchaDetectedError
		networkErr    *crawler.NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "validation_error",
			Detail: validationErr.Error(),
			Code:   http.StatusUnprocessableEntity,
		}
	case errors.As(err, &sessionErr):
		return http.StatusServiceUnavailable, models.ErrorResponse{
			Error:    "session_error",
			Detail:   sessionErr.Error(),
			Code:     http.StatusServiceUnavailable,
			Provider: sessionErr.Provider,
			Reason:   sessionErr.Reason,
		}
	case errors.As(err, &captchaErr):
		return http.StatusServiceUnavailable, models.ErrorResponse{
			Error:       "captcha_detected",
			Detail:      captchaErr.Error(),
			Code:        http.StatusServiceUnavailable,
			CaptchaType: captchaErr.CaptchaType,
		}
	case errors.As(err, &networkErr):
		return http.StatusBadGateway, models.ErrorResponse{
			Error:    "network_error",
			Detail:   networkErr.Error(),
			Code:     http.StatusBadGateway,
			Attempts: networkErr.Attempts,
		}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{
			Error:  "search_error",
			Detail: "Failed to search flights: " + err.Error(),
			Code:   http.StatusInternalServerError,
		}
	}
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
