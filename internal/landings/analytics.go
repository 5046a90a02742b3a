package landings

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"landkit/internal/timeframe"
)

// RecentLead is the trimmed lead view embedded in landing analytics.
type RecentLead struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Analytics summarizes a single landing's performance.
type Analytics struct {
	TotalViews     int                  `json:"total_views"`
	TotalLeads     int                  `json:"total_leads"`
	ConversionRate float64              `json:"conversion_rate"`
	RecentLeads    []RecentLead         `json:"recent_leads"`
	LeadsByDay     []timeframe.DateStat `json:"leads_by_day"`
}

// ConversionRate computes leads per view as a percentage rounded to
// two decimals. Zero views means a zero rate, whatever the lead count.
func ConversionRate(leadsCount, viewsCount int) float64 {
	if viewsCount == 0 {
		return 0
	}
	rate := float64(leadsCount) / float64(viewsCount) * 100
	return math.Round(rate*100) / 100
}

// GetAnalytics builds the analytics summary for a landing: counter
// totals, derived conversion rate, the five most recent leads, and a
// 30-day daily lead series.
func GetAnalytics(db *gorm.DB, landingID uint) (*Analytics, error) {
	landing, err := GetLandingByID(db, landingID)
	if err != nil {
		return nil, err
	}

	var recent []RecentLead
	err = db.Table("leads").
		Select("name, email, created_at").
		Where("landing_id = ?", landingID).
		Order("created_at DESC").
		Limit(5).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent leads: %w", err)
	}

	rng := timeframe.Trailing30Days(time.Now().UTC())
	var byDay []timeframe.DateStat
	query := fmt.Sprintf(`
		SELECT %s AS date, COUNT(*) AS count
		FROM leads
		WHERE landing_id = ? AND created_at BETWEEN ? AND ?
		GROUP BY date
		ORDER BY date ASC
	`, timeframe.DayExprFor("created_at"))

	if err := db.Raw(query, landingID, rng.From, rng.To).Scan(&byDay).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate leads by day: %w", err)
	}

	return &Analytics{
		TotalViews:     landing.ViewsCount,
		TotalLeads:     landing.LeadsCount,
		ConversionRate: ConversionRate(landing.LeadsCount, landing.ViewsCount),
		RecentLeads:    recent,
		LeadsByDay:     byDay,
	}, nil
}
