package http

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/datatypes"

	"landkit/internal/content"
	"landkit/internal/templates"
)

// TemplateParams is the create/update payload for templates.
type TemplateParams struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Content      *datatypes.JSON `json:"content"`
	PreviewImage *string         `json:"preview_image"`
	IsActive     *bool           `json:"is_active"`
	IsPremium    *bool           `json:"is_premium"`
}

// TemplatesIndexAction lists templates with optional filters.
func TemplatesIndexAction(ctx *cartridge.Context) error {
	filters := templates.Filters{Search: ctx.Query("search")}
	if active := ctx.Query("active"); active != "" {
		value := active == "true" || active == "1"
		filters.Active = &value
	}
	if premium := ctx.Query("premium"); premium != "" {
		value := premium == "true" || premium == "1"
		filters.Premium = &value
	}

	list, err := templates.ListTemplates(ctx.DB(), filters)
	if err != nil {
		ctx.Logger.Error("Failed to list templates", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to list templates")
	}
	return respondData(ctx, http.StatusOK, list)
}

// TemplatesFreeAction lists active non-premium templates.
func TemplatesFreeAction(ctx *cartridge.Context) error {
	list, err := templates.FreeTemplates(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to list free templates", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to list templates")
	}
	return respondData(ctx, http.StatusOK, list)
}

// TemplatesPremiumAction lists active premium templates.
func TemplatesPremiumAction(ctx *cartridge.Context) error {
	list, err := templates.PremiumTemplates(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to list premium templates", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to list templates")
	}
	return respondData(ctx, http.StatusOK, list)
}

// TemplatesShowAction returns one template by id.
func TemplatesShowAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid template id")
	}

	tpl, err := templates.GetTemplateByID(ctx.DB(), uint(id))
	if err != nil {
		var notFound *templates.TemplateNotFoundError
		if errors.As(err, &notFound) {
			return respondError(ctx, http.StatusNotFound, "Template not found")
		}
		ctx.Logger.Error("Failed to load template", slog.Int("id", id), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to load template")
	}
	return respondData(ctx, http.StatusOK, tpl)
}

// TemplatesCreateAction creates a template.
func TemplatesCreateAction(ctx *cartridge.Context) error {
	var params TemplateParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	errs := make(map[string]string)
	if params.Name == nil || strings.TrimSpace(*params.Name) == "" {
		errs["name"] = "name is required"
	}
	if params.Content == nil || len(*params.Content) == 0 {
		errs["content"] = "content is required"
	} else if _, err := content.Parse(*params.Content); err != nil {
		errs["content"] = "content must be a JSON object"
	}
	if len(errs) > 0 {
		return respondValidationErrors(ctx, errs)
	}

	tpl := templates.Template{
		Name:     strings.TrimSpace(*params.Name),
		Content:  *params.Content,
		IsActive: true,
	}
	if params.Description != nil {
		tpl.Description = *params.Description
	}
	if params.PreviewImage != nil {
		tpl.PreviewImage = *params.PreviewImage
	}
	if params.IsActive != nil {
		tpl.IsActive = *params.IsActive
	}
	if params.IsPremium != nil {
		tpl.IsPremium = *params.IsPremium
	}

	if err := templates.CreateTemplate(ctx.DB(), ctx.Logger, &tpl); err != nil {
		ctx.Logger.Error("Failed to create template", slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to create template")
	}
	return respondData(ctx, http.StatusCreated, tpl)
}

// TemplatesUpdateAction partially updates a template.
func TemplatesUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid template id")
	}

	tpl, err := templates.GetTemplateByID(ctx.DB(), uint(id))
	if err != nil {
		var notFound *templates.TemplateNotFoundError
		if errors.As(err, &notFound) {
			return respondError(ctx, http.StatusNotFound, "Template not found")
		}
		return respondError(ctx, http.StatusInternalServerError, "Failed to load template")
	}

	var params TemplateParams
	if err := ctx.BodyParser(&params); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return respondValidationErrors(ctx, map[string]string{"name": "name cannot be empty"})
		}
		tpl.Name = strings.TrimSpace(*params.Name)
	}
	if params.Content != nil {
		if _, err := content.Parse(*params.Content); err != nil {
			return respondValidationErrors(ctx, map[string]string{"content": "content must be a JSON object"})
		}
		tpl.Content = *params.Content
	}
	if params.Description != nil {
		tpl.Description = *params.Description
	}
	if params.PreviewImage != nil {
		tpl.PreviewImage = *params.PreviewImage
	}
	if params.IsActive != nil {
		tpl.IsActive = *params.IsActive
	}
	if params.IsPremium != nil {
		tpl.IsPremium = *params.IsPremium
	}

	if err := templates.UpdateTemplate(ctx.DB(), ctx.Logger, tpl); err != nil {
		ctx.Logger.Error("Failed to update template", slog.Int("id", id), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to update template")
	}
	return respondData(ctx, http.StatusOK, tpl)
}

// TemplatesDeleteAction deletes an unreferenced template.
func TemplatesDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(ctx, http.StatusBadRequest, "Invalid template id")
	}

	if err := templates.DeleteTemplate(ctx.DB(), ctx.Logger, uint(id)); err != nil {
		var notFound *templates.TemplateNotFoundError
		switch {
		case errors.As(err, &notFound):
			return respondError(ctx, http.StatusNotFound, "Template not found")
		case errors.Is(err, templates.ErrTemplateInUse):
			return respondError(ctx, http.StatusConflict, "Template is in use by existing landing pages")
		}
		ctx.Logger.Error("Failed to delete template", slog.Int("id", id), slog.Any("error", err))
		return respondError(ctx, http.StatusInternalServerError, "Failed to delete template")
	}
	return respondMessage(ctx, http.StatusOK, "Template deleted")
}
