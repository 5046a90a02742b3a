package clicks

import (
	"landkit/internal/timeframe"
)

// DefaultTopProducts is the default ranking size for popular-product
// queries.
const DefaultTopProducts = 10

// LandingScopedQueryParams contains the common parameters for click
// aggregation queries: the set of landing ids visible to the caller
// and an inclusive date range.
type LandingScopedQueryParams struct {
	LandingIDs []uint
	Range      timeframe.DateRange
	Limit      int // Number of records to return for ranked queries
}

// NewLandingScopedQueryParams creates query params with the default
// ranking limit.
func NewLandingScopedQueryParams(landingIDs []uint, rng timeframe.DateRange) LandingScopedQueryParams {
	return LandingScopedQueryParams{
		LandingIDs: landingIDs,
		Range:      rng,
		Limit:      DefaultTopProducts,
	}
}
