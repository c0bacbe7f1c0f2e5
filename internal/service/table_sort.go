package service

import (
	"strings"

	"github.com/foliocms/folio/backend/internal/models"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// TableSort is the sort a request resolved to.
type TableSort struct {
	Column    models.ColumnSpec
	Direction string
}

// ResolveSort picks the active column from order (a column key) and the
// direction from sort. Unknown or unsortable columns fall back to the
// header's default column. The returned header has Active and Direction
// set on the chosen column.
func ResolveSort(header []models.ColumnSpec, order, sort string) ([]models.ColumnSpec, TableSort) {
	resolved := make([]models.ColumnSpec, len(header))
	copy(resolved, header)

	active := -1
	for i, col := range resolved {
		if col.Key == order && col.Sortable() {
			active = i
			break
		}
	}
	if active < 0 {
		for i, col := range resolved {
			if col.DefaultSort != "" && col.Sortable() {
				active = i
				break
			}
		}
	}
	if active < 0 {
		for i, col := range resolved {
			if col.Sortable() {
				active = i
				break
			}
		}
	}
	if active < 0 {
		return resolved, TableSort{}
	}

	dir := SortAsc
	switch {
	case sort != "":
		if strings.EqualFold(sort, SortDesc) {
			dir = SortDesc
		}
	case resolved[active].DefaultSort != "":
		dir = strings.ToLower(resolved[active].DefaultSort)
	}

	resolved[active].Active = true
	resolved[active].Direction = dir
	return resolved, TableSort{Column: resolved[active], Direction: dir}
}
