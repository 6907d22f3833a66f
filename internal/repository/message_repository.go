package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.MessageStore = (*MessageRepository)(nil)

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, lead_id, template_id, direction, channel, status,
	subject, body, pii_redacted, sent_at, created_at`

func scanMessage(row pgx.Row) (*entities.Message, error) {
	var m entities.Message
	err := row.Scan(&m.ID, &m.LeadID, &m.TemplateID, &m.Direction, &m.Channel,
		&m.Status, &m.Subject, &m.Body, &m.PIIRedacted, &m.SentAt, &m.CreatedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return &m, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *entities.Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (lead_id, template_id, direction, channel, status,
			subject, body, pii_redacted, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		m.LeadID, m.TemplateID, m.Direction, m.Channel, m.Status,
		m.Subject, m.Body, m.PIIRedacted, m.SentAt,
	).Scan(&m.ID, &m.CreatedAt)
	return wrapPgError(err)
}

func (r *MessageRepository) GetByID(ctx context.Context, id int) (*entities.Message, error) {
	return scanMessage(r.db.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id = $1", id))
}

// ListByLead returns a lead's messages newest first.
func (r *MessageRepository) ListByLead(ctx context.Context, leadID, limit int) ([]entities.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE lead_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		leadID, limit)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	messages := []entities.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) MarkStatus(ctx context.Context, id int, status string, sentAt *time.Time) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE messages SET status = $2, sent_at = $3 WHERE id = $1",
		id, status, sentAt)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
