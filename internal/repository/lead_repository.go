package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.LeadStore = (*LeadRepository)(nil)

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, company_id, first_name, last_name, email, phone, title,
	linkedin_url, source, stage, score, score_reason, notes, created_at, updated_at`

func scanLead(row pgx.Row) (*entities.Lead, error) {
	var l entities.Lead
	err := row.Scan(&l.ID, &l.CompanyID, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&l.Title, &l.LinkedinURL, &l.Source, &l.Stage, &l.Score, &l.ScoreReason,
		&l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return &l, nil
}

func collectLeads(rows pgx.Rows) ([]entities.Lead, error) {
	defer rows.Close()
	leads := []entities.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Create(ctx context.Context, l *entities.Lead) error {
	if l.Stage == "" {
		l.Stage = entities.StageNew
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO leads (company_id, first_name, last_name, email, phone, title,
			linkedin_url, source, stage, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, score, created_at, updated_at`,
		l.CompanyID, l.FirstName, l.LastName, l.Email, l.Phone, l.Title,
		l.LinkedinURL, l.Source, l.Stage, l.Notes,
	).Scan(&l.ID, &l.Score, &l.CreatedAt, &l.UpdatedAt)
	return wrapPgError(err)
}

func (r *LeadRepository) GetByID(ctx context.Context, id int) (*entities.Lead, error) {
	return scanLead(r.db.QueryRow(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE id = $1", id))
}

// List returns leads page by page, optionally restricted to one stage.
func (r *LeadRepository) List(ctx context.Context, stage string, limit, offset int) ([]entities.Lead, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if stage != "" {
		rows, err = r.db.Query(ctx,
			"SELECT "+leadColumns+" FROM leads WHERE stage = $1 ORDER BY score DESC, id ASC LIMIT $2 OFFSET $3",
			stage, limit, offset)
	} else {
		rows, err = r.db.Query(ctx,
			"SELECT "+leadColumns+" FROM leads ORDER BY score DESC, id ASC LIMIT $1 OFFSET $2",
			limit, offset)
	}
	if err != nil {
		return nil, wrapPgError(err)
	}
	return collectLeads(rows)
}

// Update rewrites the mutable contact fields. Stage and score move through
// UpdateStage/UpdateScore so their side effects stay in one place.
func (r *LeadRepository) Update(ctx context.Context, l *entities.Lead) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE leads
		SET company_id = $2, first_name = $3, last_name = $4, email = $5, phone = $6,
			title = $7, linkedin_url = $8, source = $9, notes = $10, updated_at = NOW()
		WHERE id = $1`,
		l.ID, l.CompanyID, l.FirstName, l.LastName, l.Email, l.Phone,
		l.Title, l.LinkedinURL, l.Source, l.Notes)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id, score int, reason string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE leads SET score = $2, score_reason = $3, updated_at = NOW() WHERE id = $1",
		id, score, reason)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LeadRepository) UpdateStage(ctx context.Context, id int, stage string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE leads SET stage = $2, updated_at = NOW() WHERE id = $1", id, stage)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LeadRepository) CountByStage(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, "SELECT stage, COUNT(*) FROM leads GROUP BY stage")
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepository) ListByStage(ctx context.Context, stage string, limit int) ([]entities.Lead, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+leadColumns+" FROM leads WHERE stage = $1 ORDER BY score DESC, id ASC LIMIT $2",
		stage, limit)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return collectLeads(rows)
}

// ListNeedingFollowup returns leads in stage whose newest interaction is
// older than cutoff (or who have none at all).
func (r *LeadRepository) ListNeedingFollowup(ctx context.Context, stage string, cutoff time.Time) ([]entities.Lead, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.stage = $1
		  AND l.updated_at < $2
		  AND NOT EXISTS (
			SELECT 1 FROM interactions i
			WHERE i.lead_id = l.id AND i.occurred_at >= $2
		  )
		ORDER BY l.updated_at ASC`,
		stage, cutoff)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return collectLeads(rows)
}
