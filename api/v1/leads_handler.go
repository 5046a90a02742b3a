package v1

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"landkit/internal/landings"
	"landkit/internal/leads"
)

// SubmitLeadParams is the public lead-submission payload.
type SubmitLeadParams struct {
	LandingID uint           `json:"landing_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Message   string         `json:"message"`
	ExtraData map[string]any `json:"extra_data"`
}

func (p *SubmitLeadParams) validate() map[string]string {
	errs := make(map[string]string)
	if p.LandingID == 0 {
		errs["landing_id"] = "landing_id is required"
	}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	email := strings.TrimSpace(p.Email)
	switch {
	case email == "":
		errs["email"] = "email is required"
	case !strings.Contains(email, "@") || strings.ContainsAny(email, " \t"):
		errs["email"] = "email is invalid"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SubmitLeadHandler captures a contact-form submission against an
// active landing.
func SubmitLeadHandler(ctx *cartridge.Context) error {
	var params SubmitLeadParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	if errs := params.validate(); errs != nil {
		return respondValidationErrors(ctx, errs)
	}

	input := &leads.CaptureLeadInput{
		LandingID: params.LandingID,
		Name:      strings.TrimSpace(params.Name),
		Email:     strings.TrimSpace(params.Email),
		Phone:     strings.TrimSpace(params.Phone),
		Message:   params.Message,
		ExtraData: params.ExtraData,
		IPAddress: getClientIP(ctx.Ctx),
		UserAgent: ctx.Get("User-Agent"),
	}

	lead, err := leads.CaptureLead(ctx.DB(), ctx.Logger, input)
	if err != nil {
		var notFound *landings.LandingNotFoundError
		switch {
		case errors.As(err, &notFound):
			return respondError(ctx, http.StatusNotFound, "Landing page not found")
		case errors.Is(err, landings.ErrLandingInactive):
			return respondError(ctx, http.StatusBadRequest, "Landing page is not accepting submissions")
		}
		ctx.Logger.Error("Failed to capture lead",
			slog.Uint64("landing_id", uint64(params.LandingID)),
			slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to submit lead")
	}

	return respondData(ctx, http.StatusCreated, lead)
}
