package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/example/revocab/internal/spaced_repetition"
	"github.com/example/revocab/pkg/models"
)

// ReviewRecordRepository handles database operations for review records.
// It owns all mutations of scheduling state: records are created through
// Ensure and updated only through ApplyRating.
type ReviewRecordRepository struct {
	engine *spaced_repetition.FSRSLite
}

// NewReviewRecordRepository creates a new repository instance
func NewReviewRecordRepository() *ReviewRecordRepository {
	return &ReviewRecordRepository{engine: spaced_repetition.New()}
}

// GetByUserAndItem returns the record for a specific user and item.
// Returns ErrRecordNotFound when the pair has no record.
func (r *ReviewRecordRepository) GetByUserAndItem(ctx context.Context, userID, itemID int64) (*models.ReviewRecord, error) {
	var rec models.ReviewRecord
	query := DB.Rebind("SELECT * FROM review_records WHERE user_id = ? AND item_id = ?")
	err := DB.GetContext(ctx, &rec, query, userID, itemID)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get review record")
	}
	return &rec, nil
}

// Ensure creates the record for a (user, item) pair if it does not exist
// yet and returns it. Calling it twice yields the same record; an existing
// record is never modified.
func (r *ReviewRecordRepository) Ensure(ctx context.Context, userID, itemID int64, listID *int64) (*models.ReviewRecord, error) {
	rec, err := r.GetByUserAndItem(ctx, userID, itemID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	fresh := r.engine.NewRecord(userID, itemID, listID, time.Now().UTC())
	query := DB.Rebind(`
		INSERT INTO review_records (
			user_id, item_id, list_id, stability, difficulty,
			due, lapses, state, last_review, version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`)
	_, err = DB.ExecContext(ctx, query,
		fresh.UserID,
		fresh.ItemID,
		fresh.ListID,
		fresh.Stability,
		fresh.Difficulty,
		fresh.Due,
		fresh.Lapses,
		fresh.State,
		fresh.LastReview,
		fresh.CreatedAt,
	)
	if err != nil {
		// A concurrent Ensure may have inserted the row first; the unique
		// (user_id, item_id) constraint makes the re-read authoritative.
		if existing, getErr := r.GetByUserAndItem(ctx, userID, itemID); getErr == nil {
			return existing, nil
		}
		return nil, errors.Wrap(err, "failed to create review record")
	}

	return r.GetByUserAndItem(ctx, userID, itemID)
}

// ApplyRating loads the current record, runs the scheduling engine and
// persists the result. The read and write happen in one transaction with
// an optimistic version guard: if another rating lands in between, the
// update is dropped and ErrStaleWrite is returned instead of silently
// overwriting it.
func (r *ReviewRecordRepository) ApplyRating(ctx context.Context, userID, itemID int64, rating models.Rating, now time.Time) (*models.ReviewRecord, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var rec models.ReviewRecord
	query := tx.Rebind("SELECT * FROM review_records WHERE user_id = ? AND item_id = ?")
	err = tx.GetContext(ctx, &rec, query, userID, itemID)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load review record")
	}

	next, err := r.engine.Apply(rec, rating, now)
	if err != nil {
		return nil, err
	}
	next.ID = rec.ID
	next.Version = rec.Version + 1

	update := tx.Rebind(`
		UPDATE review_records SET
			stability = ?,
			difficulty = ?,
			due = ?,
			lapses = ?,
			state = ?,
			last_review = ?,
			version = ?
		WHERE id = ? AND version = ?
	`)
	result, err := tx.ExecContext(ctx, update,
		next.Stability,
		next.Difficulty,
		next.Due,
		next.Lapses,
		next.State,
		next.LastReview,
		next.Version,
		rec.ID,
		rec.Version,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update review record")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return nil, ErrStaleWrite
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit rating")
	}
	return &next, nil
}

// GetDueQueue returns up to limit records due at or before dueBefore,
// ordered ascending by due date. Limit bounds are the caller's concern.
func (r *ReviewRecordRepository) GetDueQueue(ctx context.Context, userID int64, limit int, dueBefore time.Time) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	query := DB.Rebind(`
		SELECT * FROM review_records
		WHERE user_id = ? AND due <= ?
		ORDER BY due ASC
		LIMIT ?
	`)
	err := DB.SelectContext(ctx, &records, query, userID, dueBefore, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get due queue")
	}
	return records, nil
}

// GetStats returns the user's record counts partitioned by state plus the
// number of records already due at now.
func (r *ReviewRecordRepository) GetStats(ctx context.Context, userID int64, now time.Time) (*models.ReviewStats, error) {
	var stats models.ReviewStats
	query := DB.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN state = 0 THEN 1 ELSE 0 END), 0) AS new,
			COALESCE(SUM(CASE WHEN state = 1 THEN 1 ELSE 0 END), 0) AS learning,
			COALESCE(SUM(CASE WHEN state = 2 THEN 1 ELSE 0 END), 0) AS review,
			COALESCE(SUM(CASE WHEN state = 3 THEN 1 ELSE 0 END), 0) AS relearning,
			COALESCE(SUM(CASE WHEN due <= ? THEN 1 ELSE 0 END), 0) AS due_today
		FROM review_records
		WHERE user_id = ?
	`)
	err := DB.GetContext(ctx, &stats, query, now, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get review stats")
	}
	return &stats, nil
}

// GetDueUserIDs returns the ids of users with at least one due record,
// used by the reminder job.
func (r *ReviewRecordRepository) GetDueUserIDs(ctx context.Context, now time.Time) ([]int64, error) {
	var userIDs []int64
	query := DB.Rebind("SELECT DISTINCT user_id FROM review_records WHERE due <= ?")
	err := DB.SelectContext(ctx, &userIDs, query, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get users with due records")
	}
	return userIDs, nil
}
