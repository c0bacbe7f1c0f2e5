package handler

import (
	"errors"
	"strings"

	"github.com/foliocms/folio/backend/internal/service"
	"github.com/foliocms/folio/backend/pkg/i18n"
	"github.com/foliocms/folio/backend/pkg/logger"
	"github.com/foliocms/folio/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// BookSettingsHandler serves the book settings form.
type BookSettingsHandler struct {
	settings *service.BookSettingsService
	tr       *i18n.Translator
}

// NewBookSettingsHandler creates a new book settings handler
func NewBookSettingsHandler(settings *service.BookSettingsService, tr *i18n.Translator) *BookSettingsHandler {
	return &BookSettingsHandler{settings: settings, tr: tr}
}

// GetForm returns the settings form pre-filled with the stored values.
func (h *BookSettingsHandler) GetForm(c *fiber.Ctx) error {
	ctx := c.UserContext()

	current, err := h.settings.Load(ctx)
	if err != nil {
		logger.ForRequest(c).Error().Err(err).Msg("Failed to load book settings")
		return response.InternalError(c, "failed to load book settings")
	}
	form, err := h.settings.Render(ctx, current)
	if err != nil {
		logger.ForRequest(c).Error().Err(err).Msg("Failed to render book settings form")
		return response.InternalError(c, "failed to render book settings form")
	}
	return response.Success(c, form)
}

// Submit saves a settings submission. Rejected submissions come back as 422
// with the form re-presented and errors attached to their fields.
func (h *BookSettingsHandler) Submit(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var sub service.BookSubmission
	if err := c.BodyParser(&sub); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	sub.ChildType = strings.TrimSpace(sub.ChildType)

	saved, err := h.settings.Submit(ctx, &sub)
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			RecordBookSettingsSave("invalid")
			form, renderErr := h.settings.RenderWithErrors(ctx, &sub, verrs)
			if renderErr != nil {
				logger.ForRequest(c).Error().Err(renderErr).Msg("Failed to re-render book settings form")
				return response.InternalError(c, "failed to render book settings form")
			}
			fieldErrs := make([]response.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fieldErrs = append(fieldErrs, response.FieldError{Field: fe.Field, Message: fe.Message})
			}
			return response.ValidationFailed(c, form, fieldErrs)
		}

		RecordBookSettingsSave("error")
		logger.ForRequest(c).Error().Err(err).Msg("Failed to save book settings")
		return response.InternalError(c, "failed to save book settings")
	}

	RecordBookSettingsSave("saved")
	logger.Audit(c, "book_settings_saved", map[string]string{
		"allowed_types": strings.Join(saved.AllowedTypes, ","),
		"child_type":    saved.ChildType,
	})

	return response.Success(c, fiber.Map{
		"message":  h.tr.T("form.saved", nil),
		"settings": saved,
	})
}
