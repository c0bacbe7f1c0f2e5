package handler

import (
	"github.com/foliocms/folio/backend/internal/service"
	"github.com/foliocms/folio/backend/pkg/logger"
	"github.com/foliocms/folio/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// PeopleHandler serves the account listing.
type PeopleHandler struct {
	people *service.PeopleListService
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(people *service.PeopleListService) *PeopleHandler {
	return &PeopleHandler{people: people}
}

// List renders one page of the account listing. Query parameters: order
// (column key), sort (asc or desc) and page (zero based).
func (h *PeopleHandler) List(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}

	req := service.ListRequest{
		Now:    requestTime(c),
		Path:        c.Path(),
		Destination: string(c.Request().URI().RequestURI()),
		Order:       c.Query("order"),
		Sort:        c.Query("sort"),
		Page:        page,
		Viewer:      viewer,
	}

	result, err := h.people.Render(c.UserContext(), req)
	if err != nil {
		logger.ForRequest(c).Error().Err(err).Msg("Failed to list people")
		return response.InternalError(c, "failed to list people")
	}

	RecordPeopleListRows(len(result.Accounts.Rows))
	return response.Success(c, result)
}
