package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/model"
)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

// List returns the owner's notes filtered by title and/or free-text query.
func (r *NoteRepo) List(ctx context.Context, ownerID int64, f model.NoteFilter) ([]model.Note, error) {
	const q = `
SELECT id, user_id, title, COALESCE(content, ''), created_at, updated_at
FROM notes
WHERE user_id=$1
  AND ($2 = '' OR strpos(lower(title), lower($2)) > 0)
  AND ($3 = '' OR strpos(lower(title), lower($3)) > 0 OR strpos(lower(COALESCE(content, '')), lower($3)) > 0)
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, f.Title, f.Query)
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
	return resolveOwned(ctx, r.db.Pool, ownerID, id, false)
}

// Create inserts a note and sets n.ID.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	const q = `
INSERT INTO notes (user_id, title, content, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
RETURNING id`
	if err := r.db.Pool.QueryRow(ctx, q, n.UserID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt).Scan(&n.ID); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// Update rewrites title, content and updated_at of an owned note.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note) error {
	const upd = `
UPDATE notes SET title=$3, content=NULLIF($4, ''), updated_at=$5
WHERE id=$1 AND user_id=$2`
	return withTx(ctx, r.db.Pool, func(tx pgx.Tx) error {
		cur, err := resolveOwned(ctx, tx, n.UserID, n.ID, true)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upd, n.ID, n.UserID, n.Title, n.Content, n.UpdatedAt); err != nil {
			return err
		}
		n.CreatedAt = cur.CreatedAt
		return nil
	})
}

// Delete removes an owned note.
func (r *NoteRepo) Delete(ctx context.Context, ownerID, id int64) error {
	const del = `DELETE FROM notes WHERE id=$1 AND user_id=$2`
	return withTx(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := resolveOwned(ctx, tx, ownerID, id, true); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, del, id, ownerID)
		return err
	})
}

// resolveOwned loads a note only if ownerID owns it. Missing and foreign
// notes are both ErrNotFound.
func resolveOwned(ctx context.Context, q rowQuerier, ownerID, id int64, forUpdate bool) (*model.Note, error) {
	const sel = `
SELECT id, user_id, title, COALESCE(content, ''), created_at, updated_at
FROM notes WHERE id=$1 AND user_id=$2`
	query := sel
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var n model.Note
	if err := q.QueryRow(ctx, query, id, ownerID).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
