package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/example/revocab/pkg/models"
)

// WordListRepository handles database operations for word lists
type WordListRepository struct{}

// NewWordListRepository creates a new repository instance
func NewWordListRepository() *WordListRepository {
	return &WordListRepository{}
}

// GetByID returns a list by ID
func (r *WordListRepository) GetByID(ctx context.Context, id int64) (*models.WordList, error) {
	var list models.WordList
	query := DB.Rebind("SELECT * FROM word_lists WHERE id = ?")
	err := DB.GetContext(ctx, &list, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word list")
	}
	return &list, nil
}

// GetByUser returns all lists owned by a user, newest first.
func (r *WordListRepository) GetByUser(ctx context.Context, userID int64) ([]models.WordList, error) {
	var lists []models.WordList
	query := DB.Rebind("SELECT * FROM word_lists WHERE user_id = ? ORDER BY created_at DESC, id DESC")
	err := DB.SelectContext(ctx, &lists, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word lists")
	}
	return lists, nil
}

// Create inserts a new list
func (r *WordListRepository) Create(ctx context.Context, list *models.WordList) error {
	if DB.DriverName() == "postgres" {
		query := DB.Rebind("INSERT INTO word_lists (user_id, name) VALUES (?, ?) RETURNING id")
		err := DB.QueryRowContext(ctx, query, list.UserID, list.Name).Scan(&list.ID)
		if err != nil {
			return errors.Wrap(err, "failed to create word list")
		}
		return nil
	}

	query := DB.Rebind("INSERT INTO word_lists (user_id, name) VALUES (?, ?)")
	result, err := DB.ExecContext(ctx, query, list.UserID, list.Name)
	if err != nil {
		return errors.Wrap(err, "failed to create word list")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to get last insert ID")
	}
	list.ID = id
	return nil
}

// Delete removes a list. Its words and review records survive with their
// list reference cleared, so learning history is never lost.
func (r *WordListRepository) Delete(ctx context.Context, userID, listID int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	detachRecords := tx.Rebind("UPDATE review_records SET list_id = NULL WHERE list_id = ?")
	if _, err := tx.ExecContext(ctx, detachRecords, listID); err != nil {
		return errors.Wrap(err, "failed to detach review records")
	}

	detachWords := tx.Rebind("UPDATE words SET list_id = NULL WHERE list_id = ?")
	if _, err := tx.ExecContext(ctx, detachWords, listID); err != nil {
		return errors.Wrap(err, "failed to detach words")
	}

	del := tx.Rebind("DELETE FROM word_lists WHERE id = ? AND user_id = ?")
	result, err := tx.ExecContext(ctx, del, listID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete word list")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "failed to commit list deletion")
}
