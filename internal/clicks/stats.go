package clicks

import (
	"fmt"
	"math"

	"gorm.io/gorm"
)

// ProductGroup is one row of the popular-products ranking: clicks
// grouped by (name, category, price).
type ProductGroup struct {
	ProductName     string   `json:"product_name"`
	ProductCategory *string  `json:"product_category"`
	ProductPrice    *float64 `json:"product_price"`
	ClicksCount     int64    `json:"clicks_count"`
	UniqueVisitors  int64    `json:"unique_visitors"`
	AvgPrice        *float64 `json:"avg_price"`
}

// RevenueMetrics aggregates clicked-product prices. Revenue potential
// is a naive sum of the prices visitors clicked on; it is an
// upper-bound proxy, not confirmed revenue.
type RevenueMetrics struct {
	TotalRevenuePotential float64 `json:"total_revenue_potential"`
	AvgProductPrice       float64 `json:"avg_product_price"`
	TotalClicks           int64   `json:"total_clicks"`
}

// HourStat counts clicks in one hour-of-day bucket (0-23). Hours with
// zero clicks are omitted; charting callers zero-fill.
type HourStat struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// CategoryStat counts clicks per product category.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// PopularProducts groups matching clicks by (product name, category,
// price) and ranks the groups by click count descending.
func PopularProducts(db *gorm.DB, params LandingScopedQueryParams) ([]ProductGroup, error) {
	if len(params.LandingIDs) == 0 {
		return []ProductGroup{}, nil
	}

	var results []ProductGroup

	query := `
		SELECT
			product_name,
			product_category,
			product_price,
			COUNT(*) AS clicks_count,
			COUNT(DISTINCT session_id) AS unique_visitors,
			AVG(product_price) AS avg_price
		FROM product_clicks
		WHERE landing_id IN ?
		AND created_at BETWEEN ? AND ?
		GROUP BY product_name, product_category, product_price
		ORDER BY clicks_count DESC
		LIMIT ?
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
		params.Limit,
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching popular products: %w", err)
	}

	return results, nil
}

// RevenuePotential sums clicked prices over the matching rows as a
// single aggregate record.
func RevenuePotential(db *gorm.DB, params LandingScopedQueryParams) (*RevenueMetrics, error) {
	if len(params.LandingIDs) == 0 {
		return &RevenueMetrics{}, nil
	}

	var result RevenueMetrics

	query := `
		SELECT
			COALESCE(SUM(product_price), 0) AS total_revenue_potential,
			COALESCE(AVG(product_price), 0) AS avg_product_price,
			COUNT(*) AS total_clicks
		FROM product_clicks
		WHERE landing_id IN ?
		AND created_at BETWEEN ? AND ?
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
	).Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("error calculating revenue potential: %w", err)
	}

	return &result, nil
}

// ClicksByHour counts matching clicks per hour of day.
func ClicksByHour(db *gorm.DB, params LandingScopedQueryParams) ([]HourStat, error) {
	if len(params.LandingIDs) == 0 {
		return []HourStat{}, nil
	}

	var results []HourStat

	query := `
		SELECT
			CAST(strftime('%H', created_at) AS INTEGER) AS hour,
			COUNT(*) AS count
		FROM product_clicks
		WHERE landing_id IN ?
		AND created_at BETWEEN ? AND ?
		GROUP BY hour
		ORDER BY hour ASC
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching clicks by hour: %w", err)
	}

	return results, nil
}

// ClicksByCategory counts matching clicks per category, most clicked
// first. Rows without a category are excluded.
func ClicksByCategory(db *gorm.DB, params LandingScopedQueryParams) ([]CategoryStat, error) {
	if len(params.LandingIDs) == 0 {
		return []CategoryStat{}, nil
	}

	var results []CategoryStat

	query := `
		SELECT
			product_category AS category,
			COUNT(*) AS count
		FROM product_clicks
		WHERE landing_id IN ?
		AND created_at BETWEEN ? AND ?
		AND product_category IS NOT NULL
		AND product_category != ''
		GROUP BY product_category
		ORDER BY count DESC
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching clicks by category: %w", err)
	}

	return results, nil
}

// UniqueVisitors counts distinct session identifiers among the
// matching rows. Rows with no session id do not count as a visitor.
func UniqueVisitors(db *gorm.DB, params LandingScopedQueryParams) (int64, error) {
	if len(params.LandingIDs) == 0 {
		return 0, nil
	}

	var count int64

	query := `
		SELECT COUNT(DISTINCT session_id) AS count
		FROM product_clicks
		WHERE landing_id IN ?
		AND created_at BETWEEN ? AND ?
	`

	err := db.Raw(query,
		params.LandingIDs,
		params.Range.From.UTC(),
		params.Range.To.UTC(),
	).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("error counting unique visitors: %w", err)
	}

	return count, nil
}

// AvgClicksPerVisitor divides total clicks by unique visitors, rounded
// to two decimals. Zero visitors means a zero average.
func AvgClicksPerVisitor(totalClicks, uniqueVisitors int64) float64 {
	if uniqueVisitors == 0 {
		return 0
	}
	avg := float64(totalClicks) / float64(uniqueVisitors)
	return math.Round(avg*100) / 100
}
