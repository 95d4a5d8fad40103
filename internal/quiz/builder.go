package quiz

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/example/revocab/pkg/models"
)

// Mode selects how a session's queue is sourced.
type Mode string

const (
	// ModeReview walks the global due queue across all lists.
	ModeReview Mode = "review"
	// ModeLearn walks the unlearned words of one list in insertion order.
	ModeLearn Mode = "learn"
)

// RecordSource is the slice of the review record store the builder needs.
type RecordSource interface {
	GetDueQueue(ctx context.Context, userID int64, limit int, dueBefore time.Time) ([]models.ReviewRecord, error)
	Ensure(ctx context.Context, userID, itemID int64, listID *int64) (*models.ReviewRecord, error)
}

// WordSource is the slice of the word store the builder needs.
type WordSource interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error)
	GetUnlearned(ctx context.Context, userID, listID int64, limit int) ([]models.Word, error)
	GetDistractors(ctx context.Context, wordID int64, listID *int64, count int) ([]models.Word, error)
}

// Session is one sitting's worth of quiz material, ready for a client to
// walk without further round trips per item.
type Session struct {
	ID      string        `json:"id"`
	Mode    Mode          `json:"mode"`
	Quizzes []models.Quiz `json:"quizzes"`
}

// Builder assembles ordered sessions with multiple-choice material.
type Builder struct {
	records RecordSource
	words   WordSource
	// OptionCount is the total number of choices per quiz, correct answer
	// included.
	OptionCount int

	rnd *rand.Rand
}

// NewBuilder creates a builder over the given stores.
func NewBuilder(records RecordSource, words WordSource) *Builder {
	return &Builder{
		records:     records,
		words:       words,
		OptionCount: 4,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildReviewSession assembles quizzes for the user's due records across
// all lists, ordered by due date ascending. An empty queue yields a
// session with no quizzes, not an error.
func (b *Builder) BuildReviewSession(ctx context.Context, userID int64, limit int) (*Session, error) {
	queue, err := b.records.GetDueQueue(ctx, userID, limit, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(queue))
	for _, rec := range queue {
		ids = append(ids, rec.ItemID)
	}
	words, err := b.words.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Word, len(words))
	for _, w := range words {
		byID[w.ID] = w
	}

	quizzes := make([]models.Quiz, 0, len(queue))
	for _, rec := range queue {
		word, ok := byID[rec.ItemID]
		if !ok {
			// Dangling record; the item was removed from the dictionary.
			continue
		}
		q, err := b.buildQuiz(ctx, word)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}

	return &Session{ID: uuid.NewString(), Mode: ModeReview, Quizzes: quizzes}, nil
}

// BuildLearnSession assembles quizzes for the unlearned words of one list
// in insertion order, lazily creating review records so the first rating
// submission never misses.
func (b *Builder) BuildLearnSession(ctx context.Context, userID, listID int64, limit int) (*Session, error) {
	words, err := b.words.GetUnlearned(ctx, userID, listID, limit)
	if err != nil {
		return nil, err
	}

	quizzes := make([]models.Quiz, 0, len(words))
	for _, word := range words {
		if _, err := b.records.Ensure(ctx, userID, word.ID, word.ListID); err != nil {
			return nil, err
		}
		q, err := b.buildQuiz(ctx, word)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}

	return &Session{ID: uuid.NewString(), Mode: ModeLearn, Quizzes: quizzes}, nil
}

// buildQuiz pairs a word with shuffled options: the word's own definition
// plus distractors drawn from adjacent items.
func (b *Builder) buildQuiz(ctx context.Context, word models.Word) (models.Quiz, error) {
	distractors, err := b.words.GetDistractors(ctx, word.ID, word.ListID, b.OptionCount-1)
	if err != nil {
		return models.Quiz{}, err
	}

	options := make([]models.QuizOption, 0, len(distractors)+1)
	options = append(options, models.QuizOption{ID: word.ID, Text: word.Definition})
	for _, d := range distractors {
		options = append(options, models.QuizOption{ID: d.ID, Text: d.Definition})
	}
	b.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return models.Quiz{
		ItemID:    word.ID,
		Prompt:    word.Term,
		Answer:    word.Definition,
		Hint:      word.Hint,
		CorrectID: word.ID,
		Options:   options,
	}, nil
}
