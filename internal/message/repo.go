package message

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when no message matches the requested id.
var ErrNotFound = errors.New("message not found")

// Repository persists contact messages in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new message and returns it with id and timestamp set.
func (r *Repository) Insert(ctx context.Context, m Message) (Message, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (name, email, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.Name, m.Email, m.Body)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return Message{}, err
	}
	return m, nil
}

// List returns all messages, newest first.
func (r *Repository) List(ctx context.Context) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, body, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// Delete removes a message row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
