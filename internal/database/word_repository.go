package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/revocab/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := DB.Rebind("SELECT * FROM words WHERE id = ?")
	err := DB.GetContext(ctx, &word, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word")
	}
	return &word, nil
}

// GetByIDs returns the words for a set of ids, unordered.
func (r *WordRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM words WHERE id IN (?)", ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build word query")
	}
	var words []models.Word
	err = DB.SelectContext(ctx, &words, DB.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get words")
	}
	return words, nil
}

// GetByList returns the words of a list in insertion order.
func (r *WordRepository) GetByList(ctx context.Context, listID int64) ([]models.Word, error) {
	var words []models.Word
	query := DB.Rebind("SELECT * FROM words WHERE list_id = ? ORDER BY position ASC, id ASC")
	err := DB.SelectContext(ctx, &words, query, listID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get words by list")
	}
	return words, nil
}

// GetUnlearned returns the words of a list the user has not started
// learning yet (no review record, or one still in the new state), in
// insertion order.
func (r *WordRepository) GetUnlearned(ctx context.Context, userID, listID int64, limit int) ([]models.Word, error) {
	var words []models.Word
	query := DB.Rebind(`
		SELECT w.* FROM words w
		LEFT JOIN review_records rr ON rr.item_id = w.id AND rr.user_id = ?
		WHERE w.list_id = ? AND (rr.id IS NULL OR rr.state = 0)
		ORDER BY w.position ASC, w.id ASC
		LIMIT ?
	`)
	err := DB.SelectContext(ctx, &words, query, userID, listID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unlearned words")
	}
	return words, nil
}

// GetDistractors samples up to count words other than wordID to serve as
// wrong multiple-choice options. Words from the same list come first so
// options stay semantically adjacent; the global pool fills any shortfall.
func (r *WordRepository) GetDistractors(ctx context.Context, wordID int64, listID *int64, count int) ([]models.Word, error) {
	var words []models.Word

	if listID != nil {
		query := DB.Rebind(`
			SELECT * FROM words
			WHERE list_id = ? AND id != ?
			ORDER BY RANDOM()
			LIMIT ?
		`)
		err := DB.SelectContext(ctx, &words, query, *listID, wordID, count)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get same-list distractors")
		}
	}

	if len(words) < count {
		seen := make([]int64, 0, len(words)+1)
		seen = append(seen, wordID)
		for _, w := range words {
			seen = append(seen, w.ID)
		}
		query, args, err := sqlx.In(
			"SELECT * FROM words WHERE id NOT IN (?) ORDER BY RANDOM() LIMIT ?",
			seen, count-len(words),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build distractor query")
		}
		var extra []models.Word
		err = DB.SelectContext(ctx, &extra, DB.Rebind(query), args...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get fallback distractors")
		}
		words = append(words, extra...)
	}

	return words, nil
}

// Create inserts a new word at the end of its list.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.ListID != nil && word.Position == 0 {
		query := DB.Rebind("SELECT COALESCE(MAX(position), 0) + 1 FROM words WHERE list_id = ?")
		if err := DB.GetContext(ctx, &word.Position, query, *word.ListID); err != nil {
			return errors.Wrap(err, "failed to compute word position")
		}
	}

	// lib/pq has no LastInsertId, so postgres goes through RETURNING.
	if DB.DriverName() == "postgres" {
		query := DB.Rebind(`
			INSERT INTO words (list_id, position, term, definition, phonetic, hint)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := DB.QueryRowContext(ctx, query,
			word.ListID, word.Position, word.Term, word.Definition, word.Phonetic, word.Hint,
		).Scan(&word.ID)
		if err != nil {
			return errors.Wrap(err, "failed to create word")
		}
		return nil
	}

	query := DB.Rebind(`
		INSERT INTO words (list_id, position, term, definition, phonetic, hint)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	result, err := DB.ExecContext(ctx, query,
		word.ListID,
		word.Position,
		word.Term,
		word.Definition,
		word.Phonetic,
		word.Hint,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create word")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to get last insert ID")
	}
	word.ID = id
	return nil
}
