package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/revocab/pkg/models"
)

var reviewTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRecord(stability, difficulty float64, lapses int) models.ReviewRecord {
	return models.ReviewRecord{
		UserID:     1,
		ItemID:     42,
		Stability:  stability,
		Difficulty: difficulty,
		Lapses:     lapses,
		State:      models.StateNew,
		Due:        reviewTime,
	}
}

func TestApplyGoodOnNewItem(t *testing.T) {
	e := New()
	rec := newTestRecord(2.7, 5.0, 0)

	next, err := e.Apply(rec, models.RatingGood, reviewTime)
	require.NoError(t, err)

	assert.Equal(t, 6.75, next.Stability)
	assert.Equal(t, 4.85, next.Difficulty)
	assert.Equal(t, models.StateReview, next.State)
	assert.Equal(t, 0, next.Lapses)
	assert.Equal(t, reviewTime.AddDate(0, 0, 7), next.Due)
	require.NotNil(t, next.LastReview)
	assert.Equal(t, reviewTime, *next.LastReview)
}

func TestApplyAgainOnNewItem(t *testing.T) {
	e := New()
	rec := newTestRecord(2.7, 5.0, 0)

	next, err := e.Apply(rec, models.RatingAgain, reviewTime)
	require.NoError(t, err)

	assert.Equal(t, 2.16, next.Stability)
	assert.Equal(t, 5.8, next.Difficulty)
	assert.Equal(t, models.StateRelearning, next.State)
	assert.Equal(t, 1, next.Lapses)
	assert.Equal(t, reviewTime.AddDate(0, 0, 1), next.Due)
}

func TestApplyEasyOnMatureItem(t *testing.T) {
	e := New()
	rec := newTestRecord(20, 3, 2)

	next, err := e.Apply(rec, models.RatingEasy, reviewTime)
	require.NoError(t, err)

	assert.Equal(t, 80.0, next.Stability)
	assert.Equal(t, 2.7, next.Difficulty)
	assert.Equal(t, models.StateReview, next.State)
	assert.Equal(t, 2, next.Lapses)
	assert.Equal(t, reviewTime.AddDate(0, 0, 80), next.Due)
}

func TestApplyHardStateThreshold(t *testing.T) {
	e := New()

	// Below the threshold a hard answer keeps the item in learning.
	next, err := e.Apply(newTestRecord(2.7, 5.0, 0), models.RatingHard, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, models.StateLearning, next.State)
	assert.Equal(t, 3.24, next.Stability)
	assert.Equal(t, 5.15, next.Difficulty)

	// At or above the threshold it graduates to review.
	next, err = e.Apply(newTestRecord(8, 5.0, 0), models.RatingHard, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, models.StateReview, next.State)
}

func TestApplyInvalidRating(t *testing.T) {
	e := New()
	_, err := e.Apply(newTestRecord(2.7, 5.0, 0), models.Rating(9), reviewTime)
	assert.ErrorIs(t, err, models.ErrInvalidRating)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := New()
	rec := newTestRecord(2.7, 5.0, 0)
	before := rec

	_, err := e.Apply(rec, models.RatingAgain, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, before, rec)
}

func TestStabilityGrowsOnSuccess(t *testing.T) {
	e := New()
	for _, rating := range []models.Rating{models.RatingHard, models.RatingGood, models.RatingEasy} {
		for _, s := range []float64{0.1, 1, 2.7, 7, 50, 365} {
			next, err := e.Apply(newTestRecord(s, 5.0, 0), rating, reviewTime)
			require.NoError(t, err)
			assert.Greater(t, next.Stability, s, "rating=%s stability=%v", rating, s)
		}
	}
}

func TestStabilityDecaysOnFailure(t *testing.T) {
	e := New()
	for _, s := range []float64{0.1, 0.12, 1, 2.7, 100} {
		next, err := e.Apply(newTestRecord(s, 5.0, 0), models.RatingAgain, reviewTime)
		require.NoError(t, err)
		assert.LessOrEqual(t, next.Stability, s)
		assert.GreaterOrEqual(t, next.Stability, e.MinStability)
	}
}

func TestDifficultyStaysBounded(t *testing.T) {
	e := New()
	ratings := []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy}
	for _, rating := range ratings {
		for _, d := range []float64{1, 1.05, 5, 9.9, 10} {
			next, err := e.Apply(newTestRecord(5, d, 0), rating, reviewTime)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next.Difficulty, 1.0, "rating=%s difficulty=%v", rating, d)
			assert.LessOrEqual(t, next.Difficulty, 10.0, "rating=%s difficulty=%v", rating, d)
		}
	}
}

func TestLapsesOnlyIncrementOnAgain(t *testing.T) {
	e := New()
	for _, rating := range []models.Rating{models.RatingHard, models.RatingGood, models.RatingEasy} {
		next, err := e.Apply(newTestRecord(5, 5, 3), rating, reviewTime)
		require.NoError(t, err)
		assert.Equal(t, 3, next.Lapses, "rating=%s", rating)
	}

	next, err := e.Apply(newTestRecord(5, 5, 3), models.RatingAgain, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Lapses)
}

func TestDueAlwaysAfterReviewTime(t *testing.T) {
	e := New()
	ratings := []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy}
	for _, rating := range ratings {
		for _, s := range []float64{0.1, 0.3, 2.7, 40} {
			next, err := e.Apply(newTestRecord(s, 5, 0), rating, reviewTime)
			require.NoError(t, err)
			assert.True(t, next.Due.After(reviewTime), "rating=%s stability=%v due=%v", rating, s, next.Due)
		}
	}
}

func TestIntervalFloor(t *testing.T) {
	e := New()
	assert.Equal(t, 1, e.Interval(0.1, models.RatingHard))
	assert.Equal(t, 1, e.Interval(0.9, models.RatingGood))
	assert.Equal(t, 7, e.Interval(6.75, models.RatingGood))
	assert.Equal(t, 1, e.Interval(1000, models.RatingAgain))
}

func TestNewRecordDefaults(t *testing.T) {
	e := New()
	listID := int64(7)
	rec := e.NewRecord(1, 42, &listID, reviewTime)

	assert.Equal(t, 2.7, rec.Stability)
	assert.Equal(t, 5.0, rec.Difficulty)
	assert.Equal(t, models.StateNew, rec.State)
	assert.Equal(t, reviewTime, rec.Due)
	assert.Nil(t, rec.LastReview)
	assert.Equal(t, 0, rec.Lapses)
}
