package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SearchRepository builds the filtered queries behind GET /search.
type SearchRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.LeadSearcher = (*SearchRepository)(nil)

func NewSearchRepository(db *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: db}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func leadConditions(f entities.LeadFilter) sq.And {
	conds := sq.And{}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"l.first_name": pattern},
			sq.ILike{"l.last_name": pattern},
			sq.ILike{"l.email": pattern},
			sq.ILike{"l.title": pattern},
			sq.ILike{"l.notes": pattern},
			sq.ILike{"c.name": pattern},
		})
	}
	if f.Stage != "" {
		conds = append(conds, sq.Eq{"l.stage": f.Stage})
	}
	if f.Industry != "" {
		conds = append(conds, sq.Eq{"c.industry": f.Industry})
	}
	if f.CompanyID != nil {
		conds = append(conds, sq.Eq{"l.company_id": *f.CompanyID})
	}
	if f.MinScore != nil {
		conds = append(conds, sq.GtOrEq{"l.score": *f.MinScore})
	}
	if f.MaxScore != nil {
		conds = append(conds, sq.LtOrEq{"l.score": *f.MaxScore})
	}
	return conds
}

func (r *SearchRepository) SearchLeads(ctx context.Context, f entities.LeadFilter) ([]entities.LeadSearchHit, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset)
	conds := leadConditions(f)

	query, args, err := psql.
		Select("l.id", "l.company_id", "l.first_name", "l.last_name", "l.email",
			"l.phone", "l.title", "l.linkedin_url", "l.source", "l.stage",
			"l.score", "l.score_reason", "l.notes", "l.created_at", "l.updated_at",
			"c.name AS company_name").
		From("leads l").
		Join("companies c ON c.id = l.company_id").
		Where(conds).
		OrderBy("l.score DESC", "l.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapPgError(err)
	}
	defer rows.Close()

	hits := []entities.LeadSearchHit{}
	for rows.Next() {
		var h entities.LeadSearchHit
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.FirstName, &h.LastName,
			&h.Email, &h.Phone, &h.Title, &h.LinkedinURL, &h.Source, &h.Stage,
			&h.Score, &h.ScoreReason, &h.Notes, &h.CreatedAt, &h.UpdatedAt,
			&h.CompanyName); err != nil {
			return nil, 0, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").
		From("leads l").
		Join("companies c ON c.id = l.company_id").
		Where(conds).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapPgError(err)
	}
	return hits, total, nil
}

func companyConditions(f entities.CompanyFilter) sq.And {
	conds := sq.And{}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"domain": pattern},
			sq.ILike{"description": pattern},
		})
	}
	if f.Industry != "" {
		conds = append(conds, sq.Eq{"industry": f.Industry})
	}
	if f.Size != "" {
		conds = append(conds, sq.Eq{"size": f.Size})
	}
	return conds
}

func (r *SearchRepository) SearchCompanies(ctx context.Context, f entities.CompanyFilter) ([]entities.Company, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset)
	conds := companyConditions(f)

	query, args, err := psql.
		Select("id", "name", "domain", "industry", "size", "description",
			"created_at", "updated_at").
		From("companies").
		Where(conds).
		OrderBy("name ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapPgError(err)
	}
	defer rows.Close()

	companies := []entities.Company{}
	for rows.Next() {
		var c entities.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.Industry, &c.Size,
			&c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").From("companies").Where(conds).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapPgError(err)
	}
	return companies, total, nil
}
