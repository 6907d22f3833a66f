package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

type ScoringProfileRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.ProfileStore = (*ScoringProfileRepository)(nil)

func NewScoringProfileRepository(db *pgxpool.Pool) *ScoringProfileRepository {
	return &ScoringProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*entities.ScoringProfile, error) {
	var (
		p           entities.ScoringProfile
		weightsJSON []byte
		rulesJSON   []byte
	)
	err := row.Scan(&p.ID, &p.Name, &weightsJSON, &rulesJSON,
		&p.QualifyThreshold, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	if err := json.Unmarshal(weightsJSON, &p.Weights); err != nil {
		return nil, fmt.Errorf("decode profile weights: %w", err)
	}
	if err := json.Unmarshal(rulesJSON, &p.Rules); err != nil {
		return nil, fmt.Errorf("decode profile rules: %w", err)
	}
	return &p, nil
}

func (r *ScoringProfileRepository) Create(ctx context.Context, p *entities.ScoringProfile) error {
	weightsJSON, err := json.Marshal(p.Weights)
	if err != nil {
		return fmt.Errorf("encode profile weights: %w", err)
	}
	rulesJSON, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("encode profile rules: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO scoring_profiles (name, weights, rules, qualify_threshold, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.Name, weightsJSON, rulesJSON, p.QualifyThreshold, p.IsDefault,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return wrapPgError(err)
}

const profileColumns = `id, name, weights, rules, qualify_threshold, is_default, created_at, updated_at`

func (r *ScoringProfileRepository) GetByID(ctx context.Context, id int) (*entities.ScoringProfile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM scoring_profiles WHERE id = $1", id))
}

// GetDefault returns the profile flagged is_default; the partial unique
// index guarantees at most one.
func (r *ScoringProfileRepository) GetDefault(ctx context.Context) (*entities.ScoringProfile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM scoring_profiles WHERE is_default LIMIT 1"))
}

func (r *ScoringProfileRepository) List(ctx context.Context) ([]entities.ScoringProfile, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+profileColumns+" FROM scoring_profiles ORDER BY name ASC")
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	profiles := []entities.ScoringProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *ScoringProfileRepository) Update(ctx context.Context, p *entities.ScoringProfile) error {
	weightsJSON, err := json.Marshal(p.Weights)
	if err != nil {
		return fmt.Errorf("encode profile weights: %w", err)
	}
	rulesJSON, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("encode profile rules: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE scoring_profiles
		SET name = $2, weights = $3, rules = $4, qualify_threshold = $5,
			is_default = $6, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, weightsJSON, rulesJSON, p.QualifyThreshold, p.IsDefault)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScoringProfileRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM scoring_profiles WHERE id = $1", id)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
