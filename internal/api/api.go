// Package api exposes the scheduler over HTTP. Transport concerns stop
// here: handlers validate input, map domain errors to status codes and
// delegate to the repositories and the quiz builder.
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/example/revocab/internal/database"
	"github.com/example/revocab/internal/quiz"
	"github.com/example/revocab/pkg/models"
)

// APIV1Service bundles the handlers for /api/v1.
type APIV1Service struct {
	records *database.ReviewRecordRepository
	words   *database.WordRepository
	lists   *database.WordListRepository
	builder *quiz.Builder
}

// NewAPIV1Service creates the service over the default repositories.
func NewAPIV1Service() *APIV1Service {
	records := database.NewReviewRecordRepository()
	words := database.NewWordRepository()
	return &APIV1Service{
		records: records,
		words:   words,
		lists:   database.NewWordListRepository(),
		builder: quiz.NewBuilder(records, words),
	}
}

// RegisterRoutes mounts all v1 endpoints on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/review/queue", s.GetReviewQueue)
	g.GET("/review/stats", s.GetReviewStats)
	g.POST("/review/rate", s.ApplyRating)
	g.POST("/review/ensure", s.EnsureRecord)
	g.GET("/session", s.GenerateSession)

	g.GET("/lists", s.ListWordLists)
	g.POST("/lists", s.CreateWordList)
	g.DELETE("/lists/:id", s.DeleteWordList)
	g.POST("/words", s.CreateWord)
}

type errorResponse struct {
	Error string `json:"error"`
}

// userID pulls the authenticated user from the X-User-ID header. Auth
// itself lives upstream; an absent or malformed header is a 400.
func userID(c echo.Context) (int64, error) {
	raw := c.Request().Header.Get("X-User-ID")
	if raw == "" {
		return 0, errors.New("missing X-User-ID header")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid X-User-ID: %q", raw)
	}
	return id, nil
}

// limitParam parses ?limit= with a default, enforcing [1, max].
func limitParam(c echo.Context, def, max int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("invalid limit: %q", raw)
	}
	if limit < 1 || limit > max {
		return 0, errors.Errorf("limit %d out of range [1, %d]", limit, max)
	}
	return limit, nil
}

// fail maps domain errors to HTTP statuses.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, database.ErrRecordNotFound), errors.Is(err, database.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidRating):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrStaleWrite):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
