package leads

import (
	"fmt"
	"time"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"landkit/internal/timeframe"
)

// StatsParams scopes lead statistics to an owner and optionally to a
// single landing.
type StatsParams struct {
	OwnerID   uint
	LandingID uint // 0 = all of the owner's landings
}

// LandingLeadCount ranks a landing by captured leads.
type LandingLeadCount struct {
	LandingID uint   `json:"landing_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Count     int64  `json:"count"`
}

// CountryStat is one entry of the captured-country breakdown.
type CountryStat struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Stats summarizes lead capture volume for an owner.
type Stats struct {
	Total       int64                `json:"total"`
	Today       int64                `json:"today"`
	ThisWeek    int64                `json:"this_week"`
	ThisMonth   int64                `json:"this_month"`
	LeadsByDay  []timeframe.DateStat `json:"leads_by_day"`
	TopLandings []LandingLeadCount   `json:"top_landing_pages"`
	Countries   []CountryStat        `json:"countries"`
}

// GetStats computes the owner's lead statistics: lifetime total,
// today / current ISO week / current month counts, a 30-day daily
// series, the top five landings by lead count, and a country
// breakdown of captured leads.
func GetStats(db *gorm.DB, params StatsParams) (*Stats, error) {
	now := time.Now().UTC()
	stats := &Stats{}

	total, err := countInRange(db, params, nil)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	for _, window := range []struct {
		dest *int64
		rng  timeframe.DateRange
	}{
		{&stats.Today, timeframe.Today(now)},
		{&stats.ThisWeek, timeframe.CurrentISOWeek(now)},
		{&stats.ThisMonth, timeframe.CurrentMonth(now)},
	} {
		count, err := countInRange(db, params, &window.rng)
		if err != nil {
			return nil, err
		}
		*window.dest = count
	}

	rng := timeframe.Trailing30Days(now)
	byDay, err := leadsByDay(db, params, rng)
	if err != nil {
		return nil, err
	}
	stats.LeadsByDay = byDay

	topLandings, err := topLandingsByLeads(db, params.OwnerID, 5)
	if err != nil {
		return nil, err
	}
	stats.TopLandings = topLandings

	countries, err := countryBreakdown(db, params)
	if err != nil {
		return nil, err
	}
	stats.Countries = countries

	return stats, nil
}

func scopedStatsQuery(db *gorm.DB, params StatsParams) *gorm.DB {
	query := db.Model(&Lead{}).
		Where("landing_id IN (SELECT id FROM landings WHERE user_id = ?)", params.OwnerID)
	if params.LandingID > 0 {
		query = query.Where("landing_id = ?", params.LandingID)
	}
	return query
}

func countInRange(db *gorm.DB, params StatsParams, rng *timeframe.DateRange) (int64, error) {
	query := scopedStatsQuery(db, params)
	if rng != nil {
		query = query.Where("created_at BETWEEN ? AND ?", rng.From, rng.To)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

func leadsByDay(db *gorm.DB, params StatsParams, rng timeframe.DateRange) ([]timeframe.DateStat, error) {
	var results []timeframe.DateStat

	landingFilter := ""
	args := []any{params.OwnerID, rng.From, rng.To}
	if params.LandingID > 0 {
		landingFilter = "AND landing_id = ?"
		args = append(args, params.LandingID)
	}

	query := fmt.Sprintf(`
		SELECT %s AS date, COUNT(*) AS count
		FROM leads
		WHERE landing_id IN (SELECT id FROM landings WHERE user_id = ?)
		AND created_at BETWEEN ? AND ?
		%s
		GROUP BY date
		ORDER BY date ASC
	`, timeframe.DayExprFor("created_at"), landingFilter)

	if err := db.Raw(query, args...).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate leads by day: %w", err)
	}
	return results, nil
}

func topLandingsByLeads(db *gorm.DB, ownerID uint, limit int) ([]LandingLeadCount, error) {
	var results []LandingLeadCount

	query := `
		SELECT l.landing_id, lp.title, lp.slug, COUNT(*) AS count
		FROM leads l
		JOIN landings lp ON lp.id = l.landing_id
		WHERE lp.user_id = ?
		GROUP BY l.landing_id
		ORDER BY count DESC
		LIMIT ?
	`

	if err := db.Raw(query, ownerID, limit).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to rank landings by leads: %w", err)
	}
	return results, nil
}

func countryBreakdown(db *gorm.DB, params StatsParams) ([]CountryStat, error) {
	var rows []CountryStat

	landingFilter := ""
	args := []any{params.OwnerID}
	if params.LandingID > 0 {
		landingFilter = "AND landing_id = ?"
		args = append(args, params.LandingID)
	}

	query := fmt.Sprintf(`
		SELECT country AS code, COUNT(*) AS count
		FROM leads
		WHERE landing_id IN (SELECT id FROM landings WHERE user_id = ?)
		%s
		GROUP BY country
		ORDER BY count DESC
	`, landingFilter)

	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate leads by country: %w", err)
	}

	return resolveCountryNames(rows), nil
}

// resolveCountryNames turns ISO codes into display names. Codes the
// country database does not know keep their uppercased form.
func resolveCountryNames(items []CountryStat) []CountryStat {
	if len(items) == 0 {
		return []CountryStat{}
	}

	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	result := make([]CountryStat, len(items))
	for i, item := range items {
		if item.Code == "" {
			item.Name = "Unknown"
			result[i] = item
			continue
		}

		country, err := countries.FindCountryByAlpha(item.Code)
		if err != nil {
			item.Name = caser.String(item.Code)
		} else {
			item.Name = country.Name.Common
		}
		result[i] = item
	}
	return result
}
