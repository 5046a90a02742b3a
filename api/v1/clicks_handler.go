package v1

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"landkit/internal/clicks"
	"landkit/internal/landings"
)

// TrackClickParams is the public product-click payload.
type TrackClickParams struct {
	LandingSlug     string         `json:"landing_slug"`
	ProductName     string         `json:"product_name"`
	ProductPrice    *float64       `json:"product_price"`
	ProductCategory string         `json:"product_category"`
	ProductSKU      string         `json:"product_sku"`
	ButtonText      string         `json:"button_text"`
	SessionID       string         `json:"session_id"`
	ProductData     map[string]any `json:"product_data"`
}

func (p *TrackClickParams) validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.LandingSlug) == "" {
		errs["landing_slug"] = "landing_slug is required"
	}
	if strings.TrimSpace(p.ProductName) == "" {
		errs["product_name"] = "product_name is required"
	}
	if p.ProductPrice != nil && *p.ProductPrice < 0 {
		errs["product_price"] = "product_price must be >= 0"
	}
	if len(p.ProductCategory) > 100 {
		errs["product_category"] = "product_category must be at most 100 characters"
	}
	if len(p.ProductSKU) > 100 {
		errs["product_sku"] = "product_sku must be at most 100 characters"
	}
	if len(p.ButtonText) > 50 {
		errs["button_text"] = "button_text must be at most 50 characters"
	}
	if len(p.SessionID) > 100 {
		errs["session_id"] = "session_id must be at most 100 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TrackProductClickHandler records one product-click event against a
// landing resolved by slug.
func TrackProductClickHandler(ctx *cartridge.Context) error {
	var params TrackClickParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	if errs := params.validate(); errs != nil {
		return respondValidationErrors(ctx, errs)
	}

	input := &clicks.TrackClickInput{
		LandingSlug:     strings.TrimSpace(params.LandingSlug),
		ProductName:     strings.TrimSpace(params.ProductName),
		ProductPrice:    params.ProductPrice,
		ProductCategory: strings.TrimSpace(params.ProductCategory),
		ProductSKU:      strings.TrimSpace(params.ProductSKU),
		ButtonText:      strings.TrimSpace(params.ButtonText),
		SessionID:       strings.TrimSpace(params.SessionID),
		ProductData:     params.ProductData,
		IPAddress:       getClientIP(ctx.Ctx),
		UserAgent:       ctx.Get("User-Agent"),
		Referrer:        ctx.Get("Referer"),
	}

	click, err := clicks.TrackClick(ctx.DB(), ctx.Logger, input)
	if err != nil {
		var notFound *landings.LandingNotFoundError
		switch {
		case errors.As(err, &notFound):
			return respondError(ctx, http.StatusNotFound, "Landing page not found")
		case errors.Is(err, landings.ErrLandingInactive):
			return respondError(ctx, http.StatusBadRequest, "Landing page is not active")
		}
		ctx.Logger.Error("Failed to track product click",
			slog.String("slug", params.LandingSlug),
			slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to track click")
	}

	return respondData(ctx, http.StatusCreated, map[string]any{
		"click_id":     click.ID,
		"product_name": click.ProductName,
		"timestamp":    click.CreatedAt,
	})
}
