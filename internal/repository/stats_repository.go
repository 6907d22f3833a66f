package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

// StatsRepository aggregates the counters behind the dashboard and the
// admin overview.
type StatsRepository struct {
	db *pgxpool.Pool
}

var _ interfaces.StatsStore = (*StatsRepository)(nil)

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) DashboardStats(ctx context.Context) (*entities.DashboardStats, error) {
	stats := &entities.DashboardStats{LeadsByStage: map[string]int{}}

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM companies),
			(SELECT COALESCE(AVG(score), 0) FROM leads),
			(SELECT COUNT(*) FROM messages
				WHERE direction = 'outbound' AND status = 'sent'
				AND sent_at >= NOW() - INTERVAL '7 days'),
			(SELECT COUNT(*) FROM interactions
				WHERE kind = 'reply'
				AND occurred_at >= NOW() - INTERVAL '7 days'),
			(SELECT COUNT(*) FROM messages WHERE status = 'draft')`,
	).Scan(&stats.TotalLeads, &stats.TotalCompanies, &stats.AvgLeadScore,
		&stats.MessagesSent7d, &stats.Replies7d, &stats.PendingDrafts)
	if err != nil {
		return nil, wrapPgError(err)
	}

	rows, err := r.db.Query(ctx, "SELECT stage, COUNT(*) FROM leads GROUP BY stage")
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		stats.LeadsByStage[stage] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.QualifiedLeads = stats.LeadsByStage[entities.StageQualified]
	return stats, nil
}

func (r *StatsRepository) AdminStats(ctx context.Context) (*entities.AdminStats, error) {
	var stats entities.AdminStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM users WHERE role = 'admin'),
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM eval_runs)`,
	).Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.AdminCount,
		&stats.TotalLeads, &stats.TotalCompanies, &stats.TotalMessages,
		&stats.EvalRuns)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return &stats, nil
}
