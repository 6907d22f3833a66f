package usecases

import (
	"context"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

// DashboardUsecase serves the aggregate counters behind the dashboard and
// admin panels. Aggregation happens in SQL; this layer just fronts it.
type DashboardUsecase struct {
	stats interfaces.StatsStore
}

func NewDashboardUsecase(stats interfaces.StatsStore) *DashboardUsecase {
	return &DashboardUsecase{stats: stats}
}

// Overview returns the counters for the main dashboard.
func (u *DashboardUsecase) Overview(ctx context.Context) (*entities.DashboardStats, error) {
	return u.stats.DashboardStats(ctx)
}

// AdminOverview returns platform-wide totals for the admin panel.
func (u *DashboardUsecase) AdminOverview(ctx context.Context) (*entities.AdminStats, error) {
	return u.stats.AdminStats(ctx)
}
