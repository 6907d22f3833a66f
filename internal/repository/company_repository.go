package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

type CompanyRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.CompanyStore = (*CompanyRepository)(nil)

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *entities.Company) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO companies (name, domain, industry, size, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Domain, c.Industry, c.Size, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return wrapPgError(err)
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int) (*entities.Company, error) {
	var c entities.Company
	err := r.db.QueryRow(ctx, `
		SELECT id, name, domain, industry, size, description, created_at, updated_at
		FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Domain, &c.Industry, &c.Size, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]entities.Company, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, domain, industry, size, description, created_at, updated_at
		FROM companies ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	companies := []entities.Company{}
	for rows.Next() {
		var c entities.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.Industry, &c.Size, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) Update(ctx context.Context, c *entities.Company) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE companies
		SET name = $2, domain = $3, industry = $4, size = $5, description = $6, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Domain, c.Industry, c.Size, c.Description)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the company; leads and their interactions cascade.
func (r *CompanyRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		return wrapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
