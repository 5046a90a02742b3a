package http

import (
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"landkit/internal/clicks"
	"landkit/internal/landings"
	"landkit/internal/timeframe"
)

// queryRange reads from/to query params (YYYY-MM-DD), defaulting to
// the trailing 30 days.
func queryRange(ctx *cartridge.Context) (timeframe.DateRange, error) {
	fallback := timeframe.Trailing30Days(time.Now().UTC())
	return timeframe.ParseRange(ctx.Query("from"), ctx.Query("to"), fallback)
}

// LandingClickStatsAction aggregates product clicks for one landing.
func LandingClickStatsAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	rng, err := queryRange(ctx)
	if err != nil {
		return respondValidationErrors(ctx, map[string]string{"date": "dates must use the YYYY-MM-DD format"})
	}

	db := ctx.DB()
	params := clicks.NewLandingScopedQueryParams([]uint{landing.ID}, rng)
	if limit := queryInt(ctx, "limit", 0); limit > 0 {
		params.Limit = limit
	}

	popular, err := clicks.PopularProducts(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	revenue, err := clicks.RevenuePotential(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	visitors, err := clicks.UniqueVisitors(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	byCategory, err := clicks.ClicksByCategory(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}

	// Hour buckets default to today unless the caller set a range.
	hourParams := params
	if ctx.Query("from") == "" && ctx.Query("to") == "" {
		hourParams.Range = timeframe.Today(time.Now().UTC())
	}
	byHour, err := clicks.ClicksByHour(db, hourParams)
	if err != nil {
		return clickStatsError(ctx, err)
	}

	return respondData(ctx, http.StatusOK, map[string]any{
		"landing_id":             landing.ID,
		"total_clicks":           revenue.TotalClicks,
		"unique_visitors":        visitors,
		"avg_clicks_per_visitor": clicks.AvgClicksPerVisitor(revenue.TotalClicks, visitors),
		"popular_products":       popular,
		"revenue":                revenue,
		"clicks_by_hour":         byHour,
		"clicks_by_category":     byCategory,
	})
}

// GlobalClickStatsAction aggregates product clicks across every landing
// the caller owns.
func GlobalClickStatsAction(ctx *cartridge.Context) error {
	landingIDs, err := landings.OwnerLandingIDs(ctx.DB(), currentUserID(ctx))
	if err != nil {
		return clickStatsError(ctx, err)
	}

	rng, err := queryRange(ctx)
	if err != nil {
		return respondValidationErrors(ctx, map[string]string{"date": "dates must use the YYYY-MM-DD format"})
	}

	db := ctx.DB()
	params := clicks.NewLandingScopedQueryParams(landingIDs, rng)

	popular, err := clicks.PopularProducts(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	revenue, err := clicks.RevenuePotential(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	visitors, err := clicks.UniqueVisitors(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	topLandings, err := clicks.TopLandings(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	daily, err := clicks.DailySeries(db, params)
	if err != nil {
		return clickStatsError(ctx, err)
	}

	return respondData(ctx, http.StatusOK, map[string]any{
		"total_clicks":           revenue.TotalClicks,
		"unique_visitors":        visitors,
		"avg_clicks_per_visitor": clicks.AvgClicksPerVisitor(revenue.TotalClicks, visitors),
		"popular_products":       popular,
		"revenue":                revenue,
		"top_landings":           topLandings,
		"daily_series":           daily,
	})
}

// ProductDetailAction returns one product's click history on a landing.
func ProductDetailAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	productName, err := url.PathUnescape(ctx.Params("productName"))
	if err != nil || productName == "" {
		return respondError(ctx, http.StatusBadRequest, "Invalid product name")
	}

	rng, err := queryRange(ctx)
	if err != nil {
		return respondValidationErrors(ctx, map[string]string{"date": "dates must use the YYYY-MM-DD format"})
	}

	detail, err := clicks.GetProductDetail(ctx.DB(), landing.ID, productName, rng)
	if err != nil {
		return clickStatsError(ctx, err)
	}
	return respondData(ctx, http.StatusOK, detail)
}

func clickStatsError(ctx *cartridge.Context, err error) error {
	ctx.Logger.Error("Failed to compute click analytics", slog.Any("error", err))
	return respondError(ctx, http.StatusInternalServerError, "Failed to load product analytics")
}
