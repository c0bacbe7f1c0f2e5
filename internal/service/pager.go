package service

import (
	"net/url"
	"strconv"

	"github.com/foliocms/folio/backend/internal/models"
)

// BuildPager describes the pages around page. Links keep the other query
// parameters in params (sort state) and replace "page".
func BuildPager(path string, params url.Values, page, pageSize, total int) models.PagerSpec {
	spec := models.PagerSpec{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		spec.TotalPages = (total + pageSize - 1) / pageSize
	}
	if spec.TotalPages <= 1 {
		return spec
	}

	link := func(p int) *models.PagerLink {
		q := url.Values{}
		for k, v := range params {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page", strconv.Itoa(p))
		return &models.PagerLink{Page: p, Href: path + "?" + q.Encode()}
	}

	last := spec.TotalPages - 1
	if page > 0 {
		spec.First = link(0)
		spec.Previous = link(page - 1)
	}
	if page < last {
		spec.Next = link(page + 1)
		spec.Last = link(last)
	}
	return spec
}
