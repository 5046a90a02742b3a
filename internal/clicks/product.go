package clicks

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"landkit/internal/timeframe"
)

// ProductDetail summarizes one product's performance on one landing.
type ProductDetail struct {
	ProductName       string           `json:"product_name"`
	TotalClicks       int64            `json:"total_clicks"`
	UniqueVisitors    int64            `json:"unique_visitors"`
	AvgPrice          float64          `json:"avg_price"`
	RevenuePotential  float64          `json:"revenue_potential"`
	ActiveDays        int64            `json:"active_days"`
	FirstClickAt      *time.Time       `json:"first_click_at"`
	LastClickAt       *time.Time       `json:"last_click_at"`
	ClicksByDay       []DailyClickStat `json:"clicks_by_day"`
	ButtonBreakdown   []ButtonStat     `json:"button_breakdown"`
	AvgClicksPerDay   float64          `json:"avg_clicks_per_day"`
	AvgClicksPerVisit float64          `json:"avg_clicks_per_visitor"`
}

// ButtonStat counts clicks per button label for a product.
type ButtonStat struct {
	ButtonText string `json:"button_text"`
	Count      int64  `json:"count"`
}

type productSummaryRow struct {
	TotalClicks      int64
	UniqueVisitors   int64
	AvgPrice         float64
	RevenuePotential float64
	ActiveDays       int64
	FirstClickAt     *time.Time
	LastClickAt      *time.Time
}

// GetProductDetail aggregates every click of one product on one
// landing within the range. Products with no clicks in the range still
// return a zeroed detail rather than an error.
func GetProductDetail(db *gorm.DB, landingID uint, productName string, rng timeframe.DateRange) (*ProductDetail, error) {
	detail := &ProductDetail{ProductName: productName}

	var summary productSummaryRow

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_clicks,
			COUNT(DISTINCT session_id) AS unique_visitors,
			COALESCE(AVG(product_price), 0) AS avg_price,
			COALESCE(SUM(product_price), 0) AS revenue_potential,
			COUNT(DISTINCT %s) AS active_days,
			MIN(created_at) AS first_click_at,
			MAX(created_at) AS last_click_at
		FROM product_clicks
		WHERE landing_id = ?
		AND product_name = ?
		AND created_at BETWEEN ? AND ?
	`, timeframe.DayExprFor("created_at"))

	err := db.Raw(query, landingID, productName, rng.From.UTC(), rng.To.UTC()).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching product summary: %w", err)
	}

	detail.TotalClicks = summary.TotalClicks
	detail.UniqueVisitors = summary.UniqueVisitors
	detail.AvgPrice = summary.AvgPrice
	detail.RevenuePotential = summary.RevenuePotential
	detail.ActiveDays = summary.ActiveDays
	detail.FirstClickAt = summary.FirstClickAt
	detail.LastClickAt = summary.LastClickAt
	detail.AvgClicksPerVisit = AvgClicksPerVisitor(summary.TotalClicks, summary.UniqueVisitors)
	if summary.ActiveDays > 0 {
		detail.AvgClicksPerDay = AvgClicksPerVisitor(summary.TotalClicks, summary.ActiveDays)
	}

	byDay, err := productDailySeries(db, landingID, productName, rng)
	if err != nil {
		return nil, err
	}
	detail.ClicksByDay = byDay

	buttons, err := productButtonBreakdown(db, landingID, productName, rng)
	if err != nil {
		return nil, err
	}
	detail.ButtonBreakdown = buttons

	return detail, nil
}

func productDailySeries(db *gorm.DB, landingID uint, productName string, rng timeframe.DateRange) ([]DailyClickStat, error) {
	var results []DailyClickStat

	query := `
		SELECT
			strftime('%Y-%m-%d', created_at) AS date,
			COUNT(*) AS clicks,
			COUNT(DISTINCT session_id) AS unique_visitors,
			COALESCE(SUM(product_price), 0) AS revenue_potential
		FROM product_clicks
		WHERE landing_id = ?
		AND product_name = ?
		AND created_at BETWEEN ? AND ?
		GROUP BY date
		ORDER BY date ASC
	`

	err := db.Raw(query, landingID, productName, rng.From.UTC(), rng.To.UTC()).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching product daily series: %w", err)
	}

	return results, nil
}

func productButtonBreakdown(db *gorm.DB, landingID uint, productName string, rng timeframe.DateRange) ([]ButtonStat, error) {
	var results []ButtonStat

	query := `
		SELECT button_text, COUNT(*) AS count
		FROM product_clicks
		WHERE landing_id = ?
		AND product_name = ?
		AND created_at BETWEEN ? AND ?
		GROUP BY button_text
		ORDER BY count DESC
	`

	err := db.Raw(query, landingID, productName, rng.From.UTC(), rng.To.UTC()).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching button breakdown: %w", err)
	}

	return results, nil
}
