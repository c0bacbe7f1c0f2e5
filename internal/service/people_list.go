package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/internal/repository"
	"github.com/foliocms/folio/backend/pkg/database"
	"github.com/foliocms/folio/backend/pkg/i18n"
	"github.com/foliocms/folio/backend/pkg/sanitize"
)

// PeoplePageSize is the number of accounts per listing page.
const PeoplePageSize = 50

const (
	ColumnUsername  = "username"
	ColumnStatus    = "status"
	ColumnRoles     = "roles"
	ColumnMemberFor = "member_for"
	ColumnAccess    = "access"
)

// AccountStore is the account entity store the listing queries.
type AccountStore interface {
	Query() *repository.AccountQuery
	LoadMultiple(ctx context.Context, ids []int64) ([]*models.Account, error)
}

// RoleRegistry lists the site's roles.
type RoleRegistry interface {
	List(ctx context.Context, excludeAnonymous bool) ([]models.Role, error)
}

// ListRequest is the per-request state of a people listing. Now, Path and
// Destination are captured once by the caller.
type ListRequest struct {
	Now time.Time
	// Path is the listing path without query; pager links are built on it.
	Path string
	// Destination is the address the edit operation returns to, path plus
	// query. Path is used when empty.
	Destination string
	Order       string
	Sort        string
	Page        int
	Viewer      Viewer
}

func (r ListRequest) destination() string {
	if r.Destination != "" {
		return r.Destination
	}
	return r.Path
}

// PeopleListService renders the administrative account listing.
type PeopleListService struct {
	*EntityList
	accounts AccountStore
	roles    RoleRegistry
	username UsernameFormatter
	tr       *i18n.Translator
}

// NewPeopleListService creates the people listing. A nil username
// formatter selects DefaultUsernameFormatter.
func NewPeopleListService(accounts AccountStore, roles RoleRegistry, username UsernameFormatter, tr *i18n.Translator) *PeopleListService {
	if username == nil {
		username = DefaultUsernameFormatter{}
	}
	return &PeopleListService{
		EntityList: NewEntityList(tr, "/user", PermissionAdministerUsers),
		accounts:   accounts,
		roles:      roles,
		username:   username,
		tr:         tr,
	}
}

// BuildHeader returns the listing columns followed by the operations
// column. Created time is the default sort, newest first.
func (s *PeopleListService) BuildHeader() []models.ColumnSpec {
	low := []string{models.PriorityLow}
	header := []models.ColumnSpec{
		{Key: ColumnUsername, Label: s.tr.T("people.username", nil), Field: "name"},
		{Key: ColumnStatus, Label: s.tr.T("people.status", nil), Field: "status", Classes: low},
		{Key: ColumnRoles, Label: s.tr.T("people.roles", nil), Classes: low},
		{Key: ColumnMemberFor, Label: s.tr.T("people.member_for", nil), Field: "created", DefaultSort: SortDesc, Classes: low},
		{Key: ColumnAccess, Label: s.tr.T("people.access", nil), Field: "access", Classes: low},
	}
	return append(header, s.EntityList.BuildHeader()...)
}

// Load runs the listing query for req against header and returns the page
// of accounts in query order together with the resolved header.
func (s *PeopleListService) Load(ctx context.Context, req ListRequest, header []models.ColumnSpec) ([]*models.Account, []models.ColumnSpec, *repository.QueryResult, error) {
	resolved, ts := ResolveSort(header, req.Order, req.Sort)

	q := s.accounts.Query().
		Condition("uid", database.AnonymousUserID, "<>").
		Pager(PeoplePageSize, req.Page)
	if ts.Column.Field != "" {
		q = q.TableSort(ts.Column.Field, ts.Direction)
	}

	res, err := q.Execute(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("query accounts: %w", err)
	}
	accounts, err := s.accounts.LoadMultiple(ctx, res.IDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, resolved, res, nil
}

// RoleNames maps explicit role ids to escaped labels. Implicit roles are
// left out so they never show in a roles cell.
func (s *PeopleListService) RoleNames(ctx context.Context) (map[string]string, error) {
	roles, err := s.roles.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	names := make(map[string]string, len(roles))
	for _, r := range roles {
		if r.Implicit {
			continue
		}
		names[r.ID] = sanitize.PlainText(r.Label)
	}
	return names, nil
}

// BuildRow maps one account to its display cells. Relative times are
// measured from req.Now.
func (s *PeopleListService) BuildRow(account *models.Account, req ListRequest, roleNames map[string]string) models.Row {
	status := s.tr.T("status.blocked", nil)
	if account.IsActive {
		status = s.tr.T("status.active", nil)
	}

	roles := make([]string, 0, len(account.Roles))
	for _, rid := range account.Roles {
		if name, ok := roleNames[rid]; ok {
			roles = append(roles, name)
		}
	}
	sort.Strings(roles)

	access := s.tr.T("access.never", nil)
	if account.LastAccessedAt != nil {
		access = s.tr.T("access.ago", map[string]any{
			"Time": s.tr.FormatInterval(req.Now.Sub(*account.LastAccessedAt), i18n.DefaultGranularity),
		})
	}

	row := models.Row{
		ColumnUsername:  s.username.Format(account, req.Viewer),
		ColumnStatus:    status,
		ColumnRoles:     roles,
		ColumnMemberFor: s.tr.FormatInterval(req.Now.Sub(account.CreatedAt), i18n.DefaultGranularity),
		ColumnAccess:    access,
	}
	for k, v := range s.EntityList.BuildRow(s.GetOperations(account, req)) {
		row[k] = v
	}
	return row
}

// GetOperations returns the default operations for account. Edit returns
// the viewer to the current listing page afterwards.
func (s *PeopleListService) GetOperations(account *models.Account, req ListRequest) map[string]models.Operation {
	ops := s.DefaultOperations(account.ID, req.Viewer)
	if edit, ok := ops["edit"]; ok {
		query := make(map[string]string, len(edit.Query)+1)
		for k, v := range edit.Query {
			query[k] = v
		}
		query["destination"] = req.destination()
		edit.Query = query
		ops["edit"] = edit
	}
	return ops
}

// Render loads one page and returns the table under "accounts" together
// with pager metadata.
func (s *PeopleListService) Render(ctx context.Context, req ListRequest) (*models.PeoplePage, error) {
	accounts, header, res, err := s.Load(ctx, req, s.BuildHeader())
	if err != nil {
		return nil, err
	}
	roleNames, err := s.RoleNames(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Row, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, s.BuildRow(a, req, roleNames))
	}

	params := url.Values{}
	for _, col := range header {
		if col.Active {
			params.Set("order", col.Key)
			params.Set("sort", col.Direction)
		}
	}

	return &models.PeoplePage{
		Accounts: s.Table(header, rows, s.tr.T("people.empty", nil)),
		Pager:    BuildPager(req.Path, params, res.Page, res.PageSize, res.Total),
	}, nil
}
