package service

import (
	"sort"
	"strconv"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/pkg/i18n"
)

const ColumnOperations = "operations"

// EntityList is the shared part of entity listings: the operations column,
// the default edit and delete operations, and the table wrapper. Concrete
// listings embed it and add their own columns.
type EntityList struct {
	tr *i18n.Translator
	// BasePath is the canonical path prefix of one entity, e.g. "/user".
	BasePath string
	// AdminPermission gates the default operations.
	AdminPermission string
}

// NewEntityList creates the shared listing part for entities under basePath.
func NewEntityList(tr *i18n.Translator, basePath, adminPermission string) *EntityList {
	return &EntityList{tr: tr, BasePath: basePath, AdminPermission: adminPermission}
}

// BuildHeader returns the operations column.
func (l *EntityList) BuildHeader() []models.ColumnSpec {
	return []models.ColumnSpec{
		{Key: ColumnOperations, Label: l.tr.T("list.operations", nil)},
	}
}

// DefaultOperations returns edit and delete for id when viewer may
// administer the entity type.
func (l *EntityList) DefaultOperations(id int64, viewer Viewer) map[string]models.Operation {
	ops := make(map[string]models.Operation)
	if !viewer.HasPermission(l.AdminPermission) {
		return ops
	}
	base := l.BasePath + "/" + strconv.FormatInt(id, 10)
	ops["edit"] = models.Operation{
		Title:  l.tr.T("list.edit", nil),
		Href:   base + "/edit",
		Weight: 10,
	}
	ops["delete"] = models.Operation{
		Title:  l.tr.T("list.delete", nil),
		Href:   base + "/cancel",
		Weight: 100,
	}
	return ops
}

// BuildRow renders the operations cell.
func (l *EntityList) BuildRow(ops map[string]models.Operation) models.Row {
	return models.Row{ColumnOperations: SortOperations(ops)}
}

// SortOperations orders operations by weight, then name.
func SortOperations(ops map[string]models.Operation) []models.NamedOperation {
	out := make([]models.NamedOperation, 0, len(ops))
	for name, op := range ops {
		out = append(out, models.NamedOperation{Name: name, Operation: op})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Table wraps header and rows. empty is shown by renderers when there are
// no rows.
func (l *EntityList) Table(header []models.ColumnSpec, rows []models.Row, empty string) models.TableSpec {
	if rows == nil {
		rows = []models.Row{}
	}
	return models.TableSpec{Header: header, Rows: rows, Empty: empty}
}
