package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/example/revocab/internal/quiz"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

// GenerateSession assembles one sitting's quizzes with distractor options.
// Review mode walks the global due queue; learn mode walks the unlearned
// words of one list in insertion order.
// GET /api/v1/session?mode=review|learn&list_id=&limit=
func (s *APIV1Service) GenerateSession(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}
	limit, err := limitParam(c, defaultSessionLimit, maxSessionLimit)
	if err != nil {
		return badRequest(c, err)
	}

	mode := quiz.Mode(c.QueryParam("mode"))
	if mode == "" {
		mode = quiz.ModeReview
	}

	ctx := c.Request().Context()
	var session *quiz.Session

	switch mode {
	case quiz.ModeReview:
		session, err = s.builder.BuildReviewSession(ctx, uid, limit)
	case quiz.ModeLearn:
		rawList := c.QueryParam("list_id")
		listID, parseErr := strconv.ParseInt(rawList, 10, 64)
		if parseErr != nil || listID <= 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "learn mode requires a positive list_id"})
		}
		session, err = s.builder.BuildLearnSession(ctx, uid, listID, limit)
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "mode must be review or learn"})
	}
	if err != nil {
		log.Printf("Error building %s session for user %d: %v", mode, uid, err)
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, session)
}
