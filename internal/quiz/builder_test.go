package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/revocab/pkg/models"
)

type fakeRecordSource struct {
	queue   []models.ReviewRecord
	ensured []int64
}

func (f *fakeRecordSource) GetDueQueue(_ context.Context, _ int64, limit int, _ time.Time) ([]models.ReviewRecord, error) {
	if len(f.queue) > limit {
		return f.queue[:limit], nil
	}
	return f.queue, nil
}

func (f *fakeRecordSource) Ensure(_ context.Context, userID, itemID int64, listID *int64) (*models.ReviewRecord, error) {
	f.ensured = append(f.ensured, itemID)
	return &models.ReviewRecord{UserID: userID, ItemID: itemID, ListID: listID, State: models.StateNew}, nil
}

type fakeWordSource struct {
	words map[int64]models.Word
	pool  []models.Word
}

func (f *fakeWordSource) GetByIDs(_ context.Context, ids []int64) ([]models.Word, error) {
	var out []models.Word
	for _, id := range ids {
		if w, ok := f.words[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWordSource) GetUnlearned(_ context.Context, _, listID int64, limit int) ([]models.Word, error) {
	var out []models.Word
	for _, w := range f.pool {
		if w.ListID != nil && *w.ListID == listID && len(out) < limit {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWordSource) GetDistractors(_ context.Context, wordID int64, _ *int64, count int) ([]models.Word, error) {
	var out []models.Word
	for _, w := range f.pool {
		if w.ID != wordID && len(out) < count {
			out = append(out, w)
		}
	}
	return out, nil
}

func listRef(id int64) *int64 { return &id }

func testWords() *fakeWordSource {
	pool := []models.Word{
		{ID: 1, ListID: listRef(10), Position: 1, Term: "ephemeral", Definition: "lasting a very short time", Hint: "think mayfly"},
		{ID: 2, ListID: listRef(10), Position: 2, Term: "lucid", Definition: "expressed clearly"},
		{ID: 3, ListID: listRef(10), Position: 3, Term: "terse", Definition: "brief and to the point"},
		{ID: 4, ListID: listRef(10), Position: 4, Term: "obdurate", Definition: "stubbornly refusing to change"},
		{ID: 5, ListID: listRef(11), Position: 1, Term: "placid", Definition: "calm and peaceful"},
	}
	byID := make(map[int64]models.Word)
	for _, w := range pool {
		byID[w.ID] = w
	}
	return &fakeWordSource{words: byID, pool: pool}
}

func TestBuildReviewSession(t *testing.T) {
	now := time.Now().UTC()
	records := &fakeRecordSource{queue: []models.ReviewRecord{
		{UserID: 1, ItemID: 2, Due: now.Add(-2 * time.Hour)},
		{UserID: 1, ItemID: 1, Due: now.Add(-1 * time.Hour)},
	}}
	b := NewBuilder(records, testWords())

	session, err := b.BuildReviewSession(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, ModeReview, session.Mode)
	require.Len(t, session.Quizzes, 2)

	// Queue order is preserved: due-ascending as the store returned it.
	assert.Equal(t, int64(2), session.Quizzes[0].ItemID)
	assert.Equal(t, int64(1), session.Quizzes[1].ItemID)

	first := session.Quizzes[0]
	assert.Equal(t, "lucid", first.Prompt)
	assert.Equal(t, "expressed clearly", first.Answer)
	assert.Equal(t, int64(2), first.CorrectID)
	assert.Len(t, first.Options, 4)

	correct := 0
	for _, opt := range first.Options {
		if opt.ID == first.CorrectID {
			correct++
			assert.Equal(t, first.Answer, opt.Text)
		} else {
			assert.NotEqual(t, first.CorrectID, opt.ID)
		}
	}
	assert.Equal(t, 1, correct, "exactly one option must be the correct answer")
}

func TestBuildReviewSessionEmptyQueue(t *testing.T) {
	b := NewBuilder(&fakeRecordSource{}, testWords())

	session, err := b.BuildReviewSession(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, session.Quizzes)
}

func TestBuildReviewSessionSkipsDanglingRecords(t *testing.T) {
	records := &fakeRecordSource{queue: []models.ReviewRecord{
		{UserID: 1, ItemID: 999}, // no such word
		{UserID: 1, ItemID: 3},
	}}
	b := NewBuilder(records, testWords())

	session, err := b.BuildReviewSession(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, session.Quizzes, 1)
	assert.Equal(t, int64(3), session.Quizzes[0].ItemID)
}

func TestBuildLearnSession(t *testing.T) {
	records := &fakeRecordSource{}
	b := NewBuilder(records, testWords())

	session, err := b.BuildLearnSession(context.Background(), 1, 10, 3)
	require.NoError(t, err)

	assert.Equal(t, ModeLearn, session.Mode)
	require.Len(t, session.Quizzes, 3)

	// Insertion order, and a record ensured for every item.
	assert.Equal(t, int64(1), session.Quizzes[0].ItemID)
	assert.Equal(t, int64(2), session.Quizzes[1].ItemID)
	assert.Equal(t, int64(3), session.Quizzes[2].ItemID)
	assert.Equal(t, []int64{1, 2, 3}, records.ensured)

	assert.Equal(t, "think mayfly", session.Quizzes[0].Hint)
}

func TestBuildLearnSessionEmptyList(t *testing.T) {
	b := NewBuilder(&fakeRecordSource{}, testWords())

	session, err := b.BuildLearnSession(context.Background(), 1, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, session.Quizzes)
}
