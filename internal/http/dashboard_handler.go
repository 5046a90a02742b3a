package http

import (
	"net/http"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"landkit/internal/landings"
	"landkit/internal/leads"
)

type dashboardTotals struct {
	TotalLandings int64 `json:"total_landings"`
	TotalLeads    int64 `json:"total_leads"`
	TotalViews    int64 `json:"total_views"`
}

// DashboardStatsAction summarizes the caller's account: portfolio
// totals, overall conversion rate, and the five most recent landings
// and leads.
func DashboardStatsAction(ctx *cartridge.Context) error {
	db := ctx.DB()
	ownerID := currentUserID(ctx)

	totals, err := ownerTotals(db, ownerID)
	if err != nil {
		ctx.Logger.Error("Failed to compute dashboard totals", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load dashboard")
	}

	var recentLandings []landings.Landing
	if err := db.Where("user_id = ?", ownerID).
		Order("created_at DESC").Limit(5).Find(&recentLandings).Error; err != nil {
		ctx.Logger.Error("Failed to load recent landings", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load dashboard")
	}

	var recentLeads []leads.Lead
	if err := db.Where("landing_id IN (SELECT id FROM landings WHERE user_id = ?)", ownerID).
		Order("created_at DESC").Limit(5).Find(&recentLeads).Error; err != nil {
		ctx.Logger.Error("Failed to load recent leads", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load dashboard")
	}

	return respondData(ctx, http.StatusOK, map[string]any{
		"total_landings":  totals.TotalLandings,
		"total_leads":     totals.TotalLeads,
		"total_views":     totals.TotalViews,
		"conversion_rate": landings.ConversionRate(int(totals.TotalLeads), int(totals.TotalViews)),
		"recent_landings": recentLandings,
		"recent_leads":    recentLeads,
	})
}

func ownerTotals(db *gorm.DB, ownerID uint) (*dashboardTotals, error) {
	var totals dashboardTotals

	query := `
		SELECT
			COUNT(*) AS total_landings,
			COALESCE(SUM(leads_count), 0) AS total_leads,
			COALESCE(SUM(views_count), 0) AS total_views
		FROM landings
		WHERE user_id = ?
	`
	if err := db.Raw(query, ownerID).Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}
