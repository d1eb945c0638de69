package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
)

// NoteRepo implements NoteRepository using SQLite.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

// List returns the owner's notes filtered by title and/or free-text query.
func (r *NoteRepo) List(ctx context.Context, ownerID int64, f model.NoteFilter) ([]model.Note, error) {
	const q = `
SELECT id, user_id, title, COALESCE(content, ''), created_at, updated_at
FROM notes
WHERE user_id = ?1
  AND (?2 = '' OR instr(casefold(title), casefold(?2)) > 0)
  AND (?3 = '' OR instr(casefold(title), casefold(?3)) > 0 OR instr(casefold(COALESCE(content, '')), casefold(?3)) > 0)
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.SQL.QueryContext(ctx, q, ownerID, f.Title, f.Query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Note, 0)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Get returns a single note owned by ownerID.
func (r *NoteRepo) Get(ctx context.Context, ownerID, id int64) (*model.Note, error) {
	return resolveOwned(ctx, r.db.SQL, ownerID, id)
}

// Create inserts a note and sets n.ID.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	const q = `
INSERT INTO notes (user_id, title, content, created_at, updated_at)
VALUES (?, ?, NULLIF(?, ''), ?, ?)`
	res, err := r.db.SQL.ExecContext(ctx, q, n.UserID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	if n.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// Update rewrites title, content and updated_at of an owned note.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note) error {
	const upd = `UPDATE notes SET title=?, content=NULLIF(?, ''), updated_at=? WHERE id=? AND user_id=?`
	return withTx(ctx, r.db.SQL, func(tx DBTX) error {
		cur, err := resolveOwned(ctx, tx, n.UserID, n.ID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upd, n.Title, n.Content, n.UpdatedAt, n.ID, n.UserID); err != nil {
			return err
		}
		n.CreatedAt = cur.CreatedAt
		return nil
	})
}

// Delete removes an owned note.
func (r *NoteRepo) Delete(ctx context.Context, ownerID, id int64) error {
	const del = `DELETE FROM notes WHERE id=? AND user_id=?`
	return withTx(ctx, r.db.SQL, func(tx DBTX) error {
		if _, err := resolveOwned(ctx, tx, ownerID, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, del, id, ownerID)
		return err
	})
}

// resolveOwned loads a note only if ownerID owns it. Missing and foreign
// notes are both ErrNotFound.
func resolveOwned(ctx context.Context, q DBTX, ownerID, id int64) (*model.Note, error) {
	const sel = `
SELECT id, user_id, title, COALESCE(content, ''), created_at, updated_at
FROM notes WHERE id=? AND user_id=?`
	var n model.Note
	err := q.QueryRowContext(ctx, sel, id, ownerID).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
