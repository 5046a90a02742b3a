package http

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/datatypes"

	"landkit/internal/content"
	"landkit/internal/landings"
	"landkit/internal/templates"
)

// LandingParams is the create/update payload for landing pages.
type LandingParams struct {
	TemplateID   *uint           `json:"template_id"`
	Title        *string         `json:"title"`
	Slug         *string         `json:"slug"`
	Description  *string         `json:"description"`
	Content      *datatypes.JSON `json:"content"`
	CustomDomain *string         `json:"custom_domain"`
	IsActive     *bool           `json:"is_active"`
}

// LandingsIndexAction lists the caller's landings.
func LandingsIndexAction(ctx *cartridge.Context) error {
	filters := landings.Filters{
		OwnerID: currentUserID(ctx),
		Search:  ctx.Query("search"),
	}
	if active := ctx.Query("active"); active != "" {
		value := active == "true" || active == "1"
		filters.Active = &value
	}

	list, err := landings.ListLandings(ctx.DB(), filters)
	if err != nil {
		ctx.Logger.Error("Failed to list landings", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to list landing pages")
	}
	return respondData(ctx, http.StatusOK, list)
}

// LandingsCreateAction creates a landing for the caller.
func LandingsCreateAction(ctx *cartridge.Context) error {
	var params LandingParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	errs := make(map[string]string)
	if params.Title == nil || strings.TrimSpace(*params.Title) == "" {
		errs["title"] = "title is required"
	} else if len(*params.Title) > 255 {
		errs["title"] = "title must be at most 255 characters"
	}
	if params.TemplateID == nil || *params.TemplateID == 0 {
		errs["template_id"] = "template_id is required"
	}
	if params.Content == nil || len(*params.Content) == 0 {
		errs["content"] = "content is required"
	} else if _, err := content.Parse(*params.Content); err != nil {
		errs["content"] = "content must be a JSON object"
	}
	if len(errs) > 0 {
		return respondValidationErrors(ctx, errs)
	}

	landing := landings.Landing{
		UserID:     currentUserID(ctx),
		TemplateID: *params.TemplateID,
		Title:      strings.TrimSpace(*params.Title),
		Content:    *params.Content,
		IsActive:   true,
	}
	if params.Slug != nil {
		landing.Slug = strings.TrimSpace(*params.Slug)
	}
	if params.Description != nil {
		landing.Description = *params.Description
	}
	if params.CustomDomain != nil {
		landing.CustomDomain = strings.TrimSpace(*params.CustomDomain)
	}
	if params.IsActive != nil {
		landing.IsActive = *params.IsActive
	}

	if err := landings.CreateLanding(ctx.DB(), ctx.Logger, &landing); err != nil {
		var tplNotFound *templates.TemplateNotFoundError
		switch {
		case errors.As(err, &tplNotFound), errors.Is(err, templates.ErrTemplateInactive):
			return respondError(ctx, http.StatusBadRequest, "Template is not available")
		case errors.Is(err, landings.ErrSlugTaken):
			return respondError(ctx, http.StatusConflict, "Slug is already in use")
		}
		ctx.Logger.Error("Failed to create landing", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to create landing page")
	}
	return respondData(ctx, http.StatusCreated, landing)
}

// LandingsShowAction returns one of the caller's landings.
func LandingsShowAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	tpl, err := templates.GetTemplateByID(ctx.DB(), landing.TemplateID)
	if err != nil {
		ctx.Logger.Warn("Landing references missing template",
			slog.Uint64("landing_id", uint64(landing.ID)),
			slog.Uint64("template_id", uint64(landing.TemplateID)))
	}

	return respondData(ctx, http.StatusOK, map[string]any{
		"landing":  landing,
		"template": tpl,
	})
}

// LandingsUpdateAction partially updates one of the caller's landings.
func LandingsUpdateAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	var params LandingParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}
	db := ctx.DB()

	if params.TemplateID != nil && *params.TemplateID != landing.TemplateID {
		if _, err := templates.GetActiveTemplateByID(db, *params.TemplateID); err != nil {
			return respondError(ctx, http.StatusBadRequest, "Template is not available")
		}
		landing.TemplateID = *params.TemplateID
	}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return respondValidationErrors(ctx, map[string]string{"title": "title cannot be empty"})
		}
		if len(title) > 255 {
			return respondValidationErrors(ctx, map[string]string{"title": "title must be at most 255 characters"})
		}
		landing.Title = title
	}
	if params.Slug != nil && strings.TrimSpace(*params.Slug) != landing.Slug {
		slug := strings.TrimSpace(*params.Slug)
		if err := landings.EnsureSlugAvailable(db, slug, landing.ID); err != nil {
			if errors.Is(err, landings.ErrSlugTaken) {
				return respondError(ctx, http.StatusConflict, "Slug is already in use")
			}
			return respondError(ctx, http.StatusInternalServerError, "Failed to update landing page")
		}
		landing.Slug = slug
	}
	if params.Content != nil {
		doc, err := content.Parse(*params.Content)
		if err != nil {
			return respondValidationErrors(ctx, map[string]string{"content": "content must be a JSON object"})
		}
		doc.EnsureForm()
		data, err := doc.ToJSON()
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, "Failed to update landing page")
		}
		landing.Content = data
	}
	if params.Description != nil {
		landing.Description = *params.Description
	}
	if params.CustomDomain != nil {
		landing.CustomDomain = strings.TrimSpace(*params.CustomDomain)
	}
	if params.IsActive != nil {
		landing.IsActive = *params.IsActive
	}

	if err := landings.UpdateLanding(db, ctx.Logger, landing); err != nil {
		ctx.Logger.Error("Failed to update landing",
			slog.Uint64("landing_id", uint64(landing.ID)), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to update landing page")
	}
	return respondData(ctx, http.StatusOK, landing)
}

// LandingsDeleteAction hard-deletes a landing with its leads and clicks.
func LandingsDeleteAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	if err := landings.DeleteLanding(ctx.DB(), ctx.Logger, landing.ID); err != nil {
		ctx.Logger.Error("Failed to delete landing",
			slog.Uint64("landing_id", uint64(landing.ID)), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to delete landing page")
	}
	return respondMessage(ctx, http.StatusOK, "Landing page deleted")
}

// LandingsDuplicateAction clones a landing with zeroed counters.
func LandingsDuplicateAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	copy, err := landings.DuplicateLanding(ctx.DB(), ctx.Logger, landing)
	if err != nil {
		ctx.Logger.Error("Failed to duplicate landing",
			slog.Uint64("landing_id", uint64(landing.ID)), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to duplicate landing page")
	}
	return respondData(ctx, http.StatusCreated, copy)
}

// LandingsAnalyticsAction returns per-landing conversion analytics.
func LandingsAnalyticsAction(ctx *cartridge.Context) error {
	landing, err := loadOwnedLanding(ctx)
	if landing == nil {
		return err
	}

	analytics, err := landings.GetAnalytics(ctx.DB(), landing.ID)
	if err != nil {
		ctx.Logger.Error("Failed to load landing analytics",
			slog.Uint64("landing_id", uint64(landing.ID)), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load analytics")
	}
	return respondData(ctx, http.StatusOK, analytics)
}

// loadOwnedLanding resolves the :id param and enforces ownership. On
// failure the response has already been written; callers return the
// error as-is when the landing is nil.
func loadOwnedLanding(ctx *cartridge.Context) (*landings.Landing, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, respondError(ctx, http.StatusBadRequest, "Invalid landing id")
	}

	landing, err := landings.GetLandingByID(ctx.DB(), uint(id))
	if err != nil {
		var notFound *landings.LandingNotFoundError
		if errors.As(err, &notFound) {
			return nil, respondError(ctx, http.StatusNotFound, "Landing page not found")
		}
		return nil, respondError(ctx, http.StatusInternalServerError, "Failed to load landing page")
	}

	if landing.UserID != currentUserID(ctx) {
		return nil, respondError(ctx, http.StatusForbidden, "You do not own this landing page")
	}

	return landing, nil
}
