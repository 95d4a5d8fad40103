package api

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/revocab/pkg/models"
)

const (
	defaultQueueLimit = 50
	maxQueueLimit     = 500
)

// ReviewQueueResponse carries the due queue and aggregate stats together
// so clients render a session header without a second round trip.
type ReviewQueueResponse struct {
	Queue []models.ReviewRecord `json:"queue"`
	Stats *models.ReviewStats   `json:"stats"`
}

// GetReviewQueue returns the records due for review, ascending by due date.
// GET /api/v1/review/queue?limit=&due_before=
func (s *APIV1Service) GetReviewQueue(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}
	limit, err := limitParam(c, defaultQueueLimit, maxQueueLimit)
	if err != nil {
		return badRequest(c, err)
	}

	dueBefore := time.Now().UTC()
	if raw := c.QueryParam("due_before"); raw != "" {
		dueBefore, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "due_before must be RFC 3339"})
		}
	}

	ctx := c.Request().Context()
	queue, err := s.records.GetDueQueue(ctx, uid, limit, dueBefore)
	if err != nil {
		log.Printf("Error getting due queue for user %d: %v", uid, err)
		return fail(c, err)
	}
	stats, err := s.records.GetStats(ctx, uid, time.Now().UTC())
	if err != nil {
		log.Printf("Error getting stats for user %d: %v", uid, err)
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, ReviewQueueResponse{Queue: queue, Stats: stats})
}

// GetReviewStats returns record counts by state plus the due-now count.
// GET /api/v1/review/stats
func (s *APIV1Service) GetReviewStats(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}

	stats, err := s.records.GetStats(c.Request().Context(), uid, time.Now().UTC())
	if err != nil {
		log.Printf("Error getting stats for user %d: %v", uid, err)
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ApplyRatingRequest is the rating submission body.
type ApplyRatingRequest struct {
	ItemID int64         `json:"item_id"`
	Rating models.Rating `json:"rating"`
}

// ApplyRatingResponse returns the record after the scheduling update.
type ApplyRatingResponse struct {
	UpdatedRecord *models.ReviewRecord `json:"updated_record"`
}

// ApplyRating runs the scheduling engine for one recall rating.
// POST /api/v1/review/rate
func (s *APIV1Service) ApplyRating(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req ApplyRatingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.ItemID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "item_id must be positive"})
	}
	if !req.Rating.IsValid() {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "rating must be one of again, hard, good, easy"})
	}

	updated, err := s.records.ApplyRating(c.Request().Context(), uid, req.ItemID, req.Rating, time.Now().UTC())
	if err != nil {
		log.Printf("Error applying rating for user %d item %d: %v", uid, req.ItemID, err)
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ApplyRatingResponse{UpdatedRecord: updated})
}

// EnsureRecordRequest identifies the item to lazily provision.
type EnsureRecordRequest struct {
	ItemID int64  `json:"item_id"`
	ListID *int64 `json:"list_id"`
}

// EnsureRecord creates the review record for an item if missing, so a
// first rating submission never 404s. Idempotent.
// POST /api/v1/review/ensure
func (s *APIV1Service) EnsureRecord(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req EnsureRecordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if req.ItemID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "item_id must be positive"})
	}

	ctx := c.Request().Context()
	if _, err := s.words.GetByID(ctx, req.ItemID); err != nil {
		return fail(c, err)
	}
	rec, err := s.records.Ensure(ctx, uid, req.ItemID, req.ListID)
	if err != nil {
		log.Printf("Error ensuring record for user %d item %d: %v", uid, req.ItemID, err)
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
