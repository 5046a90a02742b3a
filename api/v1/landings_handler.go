package v1

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"landkit/internal/landings"
)

// PublicLandingHandler serves an active landing by slug for rendering.
// Every fetch counts one raw page view.
func PublicLandingHandler(ctx *cartridge.Context) error {
	slug := ctx.Params("slug")
	db := ctx.DB()

	landing, err := landings.GetActiveLandingBySlug(db, slug)
	if err != nil {
		var notFound *landings.LandingNotFoundError
		if errors.As(err, &notFound) {
			return respondError(ctx, http.StatusNotFound, "Landing page not found")
		}
		ctx.Logger.Error("Failed to load landing", slog.String("slug", slug), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load landing page")
	}

	if err := landings.IncrementViews(db, ctx.Logger, landing.ID); err != nil {
		// Serving the page matters more than the counter.
		ctx.Logger.Warn("Failed to count landing view",
			slog.Uint64("landing_id", uint64(landing.ID)),
			slog.Any("error", err))
	} else {
		landing.ViewsCount++
	}

	return respondData(ctx, http.StatusOK, landing)
}

// IncrementViewsHandler bumps a landing's view counter without serving
// its content. Used by client-side renderers that cache the page.
func IncrementViewsHandler(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid landing id")
	}

	if err := landings.IncrementViews(ctx.DB(), ctx.Logger, uint(id)); err != nil {
		var notFound *landings.LandingNotFoundError
		switch {
		case errors.As(err, &notFound):
			return respondError(ctx, http.StatusNotFound, "Landing page not found")
		case errors.Is(err, landings.ErrLandingInactive):
			return respondError(ctx, http.StatusBadRequest, "Landing page is not active")
		}
		ctx.Logger.Error("Failed to increment views",
			slog.Int("landing_id", id), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to increment views")
	}

	return respondMessage(ctx, http.StatusOK, "View recorded")
}

// CheckSlugHandler reports whether a slug is free to use.
func CheckSlugHandler(ctx *cartridge.Context) error {
	slug := ctx.Params("slug")
	if slug == "" {
		return respondError(ctx, http.StatusBadRequest, "Slug is required")
	}

	available, err := landings.IsSlugAvailable(ctx.DB(), slug)
	if err != nil {
		ctx.Logger.Error("Failed to check slug", slog.String("slug", slug), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to check slug")
	}

	return respondData(ctx, http.StatusOK, map[string]any{
		"slug":      slug,
		"available": available,
	})
}

// GenerateSlugParams is the slug-generation payload.
type GenerateSlugParams struct {
	Title string `json:"title"`
}

// GenerateSlugHandler derives a unique URL-safe slug from a title.
func GenerateSlugHandler(ctx *cartridge.Context) error {
	var params GenerateSlugParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(params.Title) == "" {
		return respondValidationErrors(ctx, map[string]string{"title": "title is required"})
	}

	slug, err := landings.GenerateUniqueSlug(ctx.DB(), params.Title)
	if err != nil {
		ctx.Logger.Error("Failed to generate slug", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate slug")
	}

	return respondData(ctx, http.StatusOK, map[string]any{"slug": slug})
}
