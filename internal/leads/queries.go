package leads

import (
	"fmt"

	"gorm.io/gorm"

	"landkit/internal/timeframe"
)

// LeadFilters defines the filtering options for lead queries. OwnerID
// is mandatory; every query is scoped to the caller's landings.
type LeadFilters struct {
	OwnerID   uint
	LandingID uint   // 0 = all of the owner's landings
	Search    string // matches name or email
	DateFrom  string // YYYY-MM-DD, optional
	DateTo    string // YYYY-MM-DD, optional
	Limit     int
	Offset    int
}

// LeadsResult contains filtered leads with the total match count for
// pagination.
type LeadsResult struct {
	Leads []Lead `json:"leads"`
	Total int64  `json:"total"`
}

// ownedLeadsQuery scopes a leads query to the owner's landings.
func ownedLeadsQuery(db *gorm.DB, filters LeadFilters) (*gorm.DB, error) {
	query := db.Model(&Lead{}).
		Where("landing_id IN (SELECT id FROM landings WHERE user_id = ?)", filters.OwnerID)

	if filters.LandingID > 0 {
		query = query.Where("landing_id = ?", filters.LandingID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	if filters.DateFrom != "" || filters.DateTo != "" {
		rng, err := timeframe.ParseRange(filters.DateFrom, filters.DateTo, timeframe.DateRange{})
		if err != nil {
			return nil, err
		}
		if filters.DateFrom != "" {
			query = query.Where("created_at >= ?", rng.From)
		}
		if filters.DateTo != "" {
			query = query.Where("created_at <= ?", rng.To)
		}
	}

	return query, nil
}

// GetFilteredLeads returns the owner's leads matching the filters,
// newest first, with the total count before pagination.
func GetFilteredLeads(db *gorm.DB, filters LeadFilters) (*LeadsResult, error) {
	query, err := ownedLeadsQuery(db, filters)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var result []Lead
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}

	return &LeadsResult{Leads: result, Total: total}, nil
}
