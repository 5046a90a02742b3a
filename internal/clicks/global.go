package clicks

import (
	"fmt"

	"gorm.io/gorm"
)

// LandingClickStats ranks one landing by click volume across the
// owner's portfolio.
type LandingClickStats struct {
	LandingID        uint    `json:"landing_id"`
	Title            string  `json:"title"`
	Slug             string  `json:"slug"`
	TotalClicks      int64   `json:"total_clicks"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	RevenuePotential float64 `json:"revenue_potential"`
}

// DailyClickStat is one day of the click time series.
type DailyClickStat struct {
	Date             string  `json:"date"`
	Clicks           int64   `json:"clicks"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	RevenuePotential float64 `json:"revenue_potential"`
}

// TopLandings ranks the given landings by total clicks in the range,
// most clicked first.
func TopLandings(db *gorm.DB, params LandingScopedQueryParams) ([]LandingClickStats, error) {
	if len(params.LandingIDs) == 0 {
		return []LandingClickStats{}, nil
	}

	var results []LandingClickStats

	query := `
		SELECT
			pc.landing_id,
			l.title,
			l.slug,
			COUNT(*) AS total_clicks,
			COUNT(DISTINCT pc.session_id) AS unique_visitors,
			COALESCE(SUM(pc.product_price), 0) AS revenue_potential
		FROM product_clicks pc
		JOIN landings l ON l.id = pc.landing_id
		WHERE pc.landing_id IN ?
		AND pc.created_at BETWEEN ? AND ?
		GROUP BY pc.landing_id
		ORDER BY total_clicks DESC
		LIMIT ?
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
		params.Limit,
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error ranking landings by clicks: %w", err)
	}

	return results, nil
}

// DailySeries buckets the matching clicks per calendar day. Days with
// no clicks are omitted.
func DailySeries(db *gorm.DB, params LandingScopedQueryParams) ([]DailyClickStat, error) {
	if len(params.LandingIDs) == 0 {
		return []DailyClickStat{}, nil
	}

	var results []DailyClickStat

	query := `
		SELECT
			strftime('%Y-%m-%d', created_at) AS date,
			COUNT(*) AS clicks,
			COUNT(DISTINCT session_id) AS unique_visitors,
			COALESCE(SUM(product_price), 0) AS revenue_potential
		FROM product_clicks
		WHERE landing_id IN ?
		AND created_at BETWEEN ? AND ?
		GROUP BY date
		ORDER BY date ASC
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching daily click series: %w", err)
	}

	return results, nil
}
