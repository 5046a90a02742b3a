package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"landkit/internal/leads"
)

// DefaultLeadsPageSize caps lead listings when the caller sends no limit.
const DefaultLeadsPageSize = 50

// LeadUpdateParams is the partial-update payload for a captured lead.
type LeadUpdateParams struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Message *string `json:"message"`
}

func leadFiltersFromQuery(ctx *cartridge.Context) leads.LeadFilters {
	filters := leads.LeadFilters{
		OwnerID:  currentUserID(ctx),
		Search:   ctx.Query("search"),
		DateFrom: ctx.Query("date_from"),
		DateTo:   ctx.Query("date_to"),
		Limit:    queryInt(ctx, "limit", DefaultLeadsPageSize),
		Offset:   queryInt(ctx, "offset", 0),
	}
	if landingID := queryInt(ctx, "landing_id", 0); landingID > 0 {
		filters.LandingID = uint(landingID)
	}
	return filters
}

// LeadsIndexAction lists the caller's captured leads with filters and
// pagination.
func LeadsIndexAction(ctx *cartridge.Context) error {
	result, err := leads.GetFilteredLeads(ctx.DB(), leadFiltersFromQuery(ctx))
	if err != nil {
		if strings.Contains(err.Error(), "invalid date") || strings.Contains(err.Error(), "parsing time") {
			return respondValidationErrors(ctx, map[string]string{"date": "dates must use the YYYY-MM-DD format"})
		}
		ctx.Logger.Error("Failed to list leads", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to list leads")
	}
	return respondData(ctx, http.StatusOK, result)
}

// LeadsShowAction returns one of the caller's captured leads.
func LeadsShowAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid lead id")
	}

	lead, err := leads.GetOwnedLeadByID(ctx.DB(), uint(id), currentUserID(ctx))
	if err != nil {
		var notFound *leads.LeadNotFoundError
		if errors.As(err, &notFound) {
			return respondError(ctx, http.StatusNotFound, "Lead not found")
		}
		return respondError(ctx, http.StatusInternalServerError, "Failed to load lead")
	}
	return respondData(ctx, http.StatusOK, lead)
}

// LeadsUpdateAction applies owner edits to a captured lead.
func LeadsUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid lead id")
	}

	lead, err := leads.GetOwnedLeadByID(ctx.DB(), uint(id), currentUserID(ctx))
	if err != nil {
		var notFound *leads.LeadNotFoundError
		if errors.As(err, &notFound) {
			return respondError(ctx, http.StatusNotFound, "Lead not found")
		}
		return respondError(ctx, http.StatusInternalServerError, "Failed to load lead")
	}

	var params LeadUpdateParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return respondValidationErrors(ctx, map[string]string{"name": "name cannot be empty"})
		}
		lead.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		email := strings.TrimSpace(*params.Email)
		if email == "" || !strings.Contains(email, "@") {
			return respondValidationErrors(ctx, map[string]string{"email": "email is invalid"})
		}
		lead.Email = email
	}
	if params.Phone != nil {
		lead.Phone = strings.TrimSpace(*params.Phone)
	}
	if params.Message != nil {
		lead.Message = *params.Message
	}

	if err := leads.UpdateLead(ctx.DB(), ctx.Logger, lead); err != nil {
		ctx.Logger.Error("Failed to update lead", slog.Int("id", id), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to update lead")
	}
	return respondData(ctx, http.StatusOK, lead)
}

// LeadsDeleteAction removes a lead and fixes the parent counter.
func LeadsDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid lead id")
	}

	if _, err := leads.GetOwnedLeadByID(ctx.DB(), uint(id), currentUserID(ctx)); err != nil {
		var notFound *leads.LeadNotFoundError
		if errors.As(err, &notFound) {
			return respondError(ctx, http.StatusNotFound, "Lead not found")
		}
		return respondError(ctx, http.StatusInternalServerError, "Failed to load lead")
	}

	if err := leads.DeleteLead(ctx.DB(), ctx.Logger, uint(id)); err != nil {
		ctx.Logger.Error("Failed to delete lead", slog.Int("id", id), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to delete lead")
	}
	return respondMessage(ctx, http.StatusOK, "Lead deleted")
}

// LeadsExportAction streams the caller's filtered leads as CSV.
func LeadsExportAction(ctx *cartridge.Context) error {
	filters := leadFiltersFromQuery(ctx)

	filename := leads.ExportFilename(time.Now())
	ctx.Set("Content-Type", "text/csv")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := leads.ExportCSV(ctx.DB(), filters, ctx.Response().BodyWriter()); err != nil {
		ctx.Logger.Error("Failed to export leads", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to export leads")
	}
	return nil
}

// LeadsStatsAction returns the caller's lead statistics.
func LeadsStatsAction(ctx *cartridge.Context) error {
	params := leads.StatsParams{OwnerID: currentUserID(ctx)}
	if landingID := queryInt(ctx, "landing_id", 0); landingID > 0 {
		params.LandingID = uint(landingID)
	}

	stats, err := leads.GetStats(ctx.DB(), params)
	if err != nil {
		ctx.Logger.Error("Failed to load lead stats", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load lead statistics")
	}
	return respondData(ctx, http.StatusOK, stats)
}
