package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/internal/repository"
	"github.com/foliocms/folio/backend/pkg/i18n"
)

const (
	BookSettingsName   = "book.settings"
	BookSettingsFormID = "book_admin_settings"

	FieldAllowedTypes = "book_allowed_types"
	FieldChildType    = "book_child_type"
)

// ContentTypeRegistry lists the content types known to the site.
type ContentTypeRegistry interface {
	List(ctx context.Context) ([]models.ContentType, error)
}

// BookSubmission is a decoded settings form post. AllowedTypes maps a
// content type id to its checkbox state.
type BookSubmission struct {
	AllowedTypes map[string]bool `json:"book_allowed_types"`
	ChildType    string          `json:"book_child_type"`
}

// Checked returns the checked type ids in sorted order.
func (s *BookSubmission) Checked() []string {
	checked := make([]string, 0, len(s.AllowedTypes))
	for id, on := range s.AllowedTypes {
		if on {
			checked = append(checked, id)
		}
	}
	sort.Strings(checked)
	return checked
}

// BookSettingsService edits the book outline settings stored under
// book.settings.
type BookSettingsService struct {
	config *repository.ConfigRepository
	types  ContentTypeRegistry
	tr     *i18n.Translator
}

// NewBookSettingsService creates the settings editor over the config store
// and the content-type registry.
func NewBookSettingsService(config *repository.ConfigRepository, types ContentTypeRegistry, tr *i18n.Translator) *BookSettingsService {
	return &BookSettingsService{
		config: config,
		types:  types,
		tr:     tr,
	}
}

// Load reads the current book settings from the config store.
func (s *BookSettingsService) Load(ctx context.Context) (*models.BookSettings, error) {
	cfg := s.config.Config(BookSettingsName)
	settings := &models.BookSettings{}
	if err := cfg.Get(ctx, "allowed_types", &settings.AllowedTypes); err != nil {
		return nil, err
	}
	if err := cfg.Get(ctx, "child_type", &settings.ChildType); err != nil {
		return nil, err
	}
	if settings.AllowedTypes == nil {
		settings.AllowedTypes = []string{}
	}
	return settings, nil
}

// Render describes the settings form with current pre-selected.
func (s *BookSettingsService) Render(ctx context.Context, current *models.BookSettings) (*models.FormSpec, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}

	options := make([]models.FormOption, 0, len(types))
	for _, t := range types {
		options = append(options, models.FormOption{Value: t.ID, Label: t.Name})
	}

	allowed := append([]string{}, current.AllowedTypes...)
	child := []string{}
	if current.ChildType != "" {
		child = append(child, current.ChildType)
	}

	return &models.FormSpec{
		ID: BookSettingsFormID,
		Fields: []models.FormField{
			{
				Name:  FieldAllowedTypes,
				Type:  models.FieldCheckboxes,
				Title: s.tr.T("book.settings.allowed_types", nil),
				Description: s.tr.T("book.settings.allowed_types_description", map[string]any{
					"Permission": s.tr.T("book.settings.outline_permission", nil),
				}),
				Options:  options,
				Default:  allowed,
				Required: true,
			},
			{
				Name:     FieldChildType,
				Type:     models.FieldRadios,
				Title:    s.tr.T("book.settings.child_type", nil),
				Options:  options,
				Default:  child,
				Required: true,
			},
		},
		Actions: []models.FormAction{
			{Name: "submit", Label: s.tr.T("form.save", nil)},
		},
	}, nil
}

// RenderWithErrors re-presents a rejected submission with each field error
// attached to its field.
func (s *BookSettingsService) RenderWithErrors(ctx context.Context, sub *BookSubmission, errs ValidationErrors) (*models.FormSpec, error) {
	form, err := s.Render(ctx, &models.BookSettings{
		AllowedTypes: sub.Checked(),
		ChildType:    sub.ChildType,
	})
	if err != nil {
		return nil, err
	}
	for i := range form.Fields {
		form.Fields[i].Error = errs.For(form.Fields[i].Name)
	}
	return form, nil
}

// Validate checks a submission against the known content types. On success
// it returns the settings that Submit would store.
func (s *BookSettingsService) Validate(ctx context.Context, sub *BookSubmission) (*models.BookSettings, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}
	known := make(map[string]bool, len(types))
	for _, t := range types {
		known[t.ID] = true
	}

	checked := sub.Checked()
	var errs ValidationErrors

	switch {
	case len(checked) == 0:
		errs = append(errs, s.requiredError(FieldAllowedTypes, "book.settings.allowed_types", ErrAllowedTypesRequired))
	default:
		for _, id := range checked {
			if !known[id] {
				errs = append(errs, s.illegalChoice(FieldAllowedTypes))
				break
			}
		}
	}

	switch {
	case sub.ChildType == "":
		errs = append(errs, s.requiredError(FieldChildType, "book.settings.child_type", ErrChildTypeRequired))
	case !known[sub.ChildType]:
		errs = append(errs, s.illegalChoice(FieldChildType))
	case !sub.AllowedTypes[sub.ChildType]:
		errs = append(errs, FieldError{
			Field: FieldChildType,
			Message: s.tr.T("book.settings.child_type_invalid", map[string]any{
				"Link": s.tr.T("book.settings.add_child", nil),
			}),
			Err: ErrInvalidChildType,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &models.BookSettings{AllowedTypes: checked, ChildType: sub.ChildType}, nil
}

// Submit validates sub and, when valid, replaces both stored keys in one
// transaction. Unchecked types are dropped rather than stored as false.
func (s *BookSettingsService) Submit(ctx context.Context, sub *BookSubmission) (*models.BookSettings, error) {
	settings, err := s.Validate(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := s.config.Config(BookSettingsName).
		Set("allowed_types", settings.AllowedTypes).
		Set("child_type", settings.ChildType).
		Save(ctx); err != nil {
		return nil, fmt.Errorf("save book settings: %w", err)
	}
	return settings, nil
}

func (s *BookSettingsService) requiredError(field, titleID string, err error) FieldError {
	return FieldError{
		Field:   field,
		Message: s.tr.T("form.required", map[string]any{"Field": s.tr.T(titleID, nil)}),
		Err:     err,
	}
}

func (s *BookSettingsService) illegalChoice(field string) FieldError {
	return FieldError{
		Field:   field,
		Message: s.tr.T("form.illegal_choice", nil),
		Err:     ErrUnknownContentType,
	}
}
