package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

type TemplateRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.TemplateStore = (*TemplateRepository)(nil)

func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, t *entities.MessageTemplate) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO message_templates (name, channel, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Channel, t.Subject, t.Body,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return wrapPgError(err)
}

func (r *TemplateRepository) GetByID(ctx context.Context, id int) (*entities.MessageTemplate, error) {
	var t entities.MessageTemplate
	err := r.db.QueryRow(ctx, `
		SELECT id, name, channel, subject, body, created_at, updated_at
		FROM message_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Channel, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return &t, nil
}

// List returns templates, optionally restricted to one channel.
func (r *TemplateRepository) List(ctx context.Context, channel string) ([]entities.MessageTemplate, error) {
	query := `
		SELECT id, name, channel, subject, body, created_at, updated_at
		FROM message_templates`
	args := []any{}
	if channel != "" {
		query += " WHERE channel = $1"
		args = append(args, channel)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	templates := []entities.MessageTemplate{}
	for rows.Next() {
		var t entities.MessageTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Channel, &t.Subject, &t.Body,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Update(ctx context.Context, t *entities.MessageTemplate) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE message_templates
		SET name = $2, channel = $3, subject = $4, body = $5, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Channel, t.Subject, t.Body)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM message_templates WHERE id = $1", id)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
