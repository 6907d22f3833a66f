package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

// nullableTime lets the database default a zero time instead of storing it.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type InteractionRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.InteractionStore = (*InteractionRepository)(nil)

func NewInteractionRepository(db *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(ctx context.Context, in *entities.Interaction) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO interactions (lead_id, kind, content, occurred_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING id, occurred_at, created_at`,
		in.LeadID, in.Kind, in.Content, nullableTime(in.OccurredAt),
	).Scan(&in.ID, &in.OccurredAt, &in.CreatedAt)
	return wrapPgError(err)
}

// ListByLead returns a lead's interactions newest first.
func (r *InteractionRepository) ListByLead(ctx context.Context, leadID, limit int) ([]entities.Interaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, lead_id, kind, content, occurred_at, created_at
		FROM interactions WHERE lead_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	interactions := []entities.Interaction{}
	for rows.Next() {
		var in entities.Interaction
		if err := rows.Scan(&in.ID, &in.LeadID, &in.Kind, &in.Content,
			&in.OccurredAt, &in.CreatedAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}
