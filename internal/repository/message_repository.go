package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/telehealth-core/internal/model"
)

// MessageRepo appends and reads chat messages.  Rows are never updated or
// deleted.
type MessageRepo struct{ db *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts m and populates its generated ID.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	return createMessage(ctx, r.db, m)
}

// CreateTx is Create inside a caller-owned transaction.
func (r *MessageRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Message) error {
	return createMessage(ctx, tx, m)
}

func createMessage(ctx context.Context, q querier, m *model.Message) error {
	res, err := q.ExecContext(ctx,
		"INSERT INTO messages (sender, receiver, body, sent_at) VALUES (?,?,?,?)",
		m.Sender, m.Receiver, m.Body, m.SentAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListBetween returns every message exchanged between a and b in either
// direction, ordered by sent_at and then by insertion order.
func (r *MessageRepo) ListBetween(ctx context.Context, a, b string) ([]model.Message, error) {
	const q = `SELECT id, sender, receiver, body, sent_at FROM messages
               WHERE (sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)
               ORDER BY sent_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, a, b, b, a)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Receiver, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
