package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/internal/repository"
	"github.com/foliocms/folio/backend/pkg/i18n"
	"github.com/foliocms/folio/backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func adminViewer() Viewer {
	return NewViewer(1, PermissionAdministerUsers)
}

func setupPeopleList(t *testing.T, accounts ...testutil.Account) *PeopleListService {
	t.Helper()
	db, _, cleanup := testutil.SetupTest(t)
	t.Cleanup(cleanup)

	testutil.InsertRole(t, db, "admin", "admin", 3)
	testutil.InsertRole(t, db, "editor", "editor", 4)
	testutil.InsertAccounts(t, db, accounts...)

	return NewPeopleListService(
		repository.NewAccountRepository(db),
		repository.NewRoleRepository(db),
		DefaultUsernameFormatter{},
		i18n.MustNew("en"),
	)
}

func numberedAccounts(n int) []testutil.Account {
	accounts := make([]testutil.Account, 0, n)
	for i := 1; i <= n; i++ {
		accounts = append(accounts, testutil.Account{
			ID:      int64(i),
			Name:    fmt.Sprintf("user%02d", i),
			Active:  true,
			Created: listNow.Add(-time.Duration(n-i+1) * time.Hour),
		})
	}
	return accounts
}

func rowHrefs(page *models.PeoplePage) []string {
	hrefs := make([]string, 0, len(page.Accounts.Rows))
	for _, row := range page.Accounts.Rows {
		hrefs = append(hrefs, row[ColumnUsername].(models.UsernameView).Href)
	}
	return hrefs
}

func TestPeopleList_BuildHeader(t *testing.T) {
	svc := NewPeopleListService(nil, nil, nil, i18n.MustNew("en"))

	header := svc.BuildHeader()
	keys := make([]string, 0, len(header))
	for _, col := range header {
		keys = append(keys, col.Key)
	}
	assert.Equal(t, []string{ColumnUsername, ColumnStatus, ColumnRoles, ColumnMemberFor, ColumnAccess, ColumnOperations}, keys)

	assert.Equal(t, "name", header[0].Field)
	assert.Empty(t, header[0].Classes)
	assert.False(t, header[2].Sortable())
	assert.Equal(t, SortDesc, header[3].DefaultSort)
	for _, col := range header[1:5] {
		assert.Equal(t, []string{models.PriorityLow}, col.Classes, col.Key)
	}
}

func TestPeopleList_BuildRow(t *testing.T) {
	svc := NewPeopleListService(nil, nil, nil, i18n.MustNew("en"))
	req := ListRequest{Now: listNow, Path: "/admin/people", Viewer: adminViewer()}

	account := &models.Account{
		ID:        7,
		Name:      "alice",
		IsActive:  true,
		Roles:     []string{"editor", "authenticated", "admin"},
		CreatedAt: listNow.Add(-3600 * time.Second),
	}
	row := svc.BuildRow(account, req, map[string]string{"editor": "editor", "admin": "admin"})

	assert.Equal(t, "active", row[ColumnStatus])
	assert.Equal(t, "1 hour", row[ColumnMemberFor])
	assert.Equal(t, "never", row[ColumnAccess])
	assert.Equal(t, []string{"admin", "editor"}, row[ColumnRoles])
	assert.Equal(t, models.UsernameView{Name: "alice", Href: "/user/7"}, row[ColumnUsername])

	ops := row[ColumnOperations].([]models.NamedOperation)
	require.Len(t, ops, 2)
	assert.Equal(t, "edit", ops[0].Name)
	assert.Equal(t, "delete", ops[1].Name)
}

func TestPeopleList_BuildRowBlockedWithAccess(t *testing.T) {
	svc := NewPeopleListService(nil, nil, nil, i18n.MustNew("en"))
	req := ListRequest{Now: listNow, Path: "/admin/people", Viewer: NewViewer(2)}

	accessed := listNow.Add(-(2*24*time.Hour + 5*time.Hour))
	account := &models.Account{
		ID:             8,
		Name:           "bob",
		Roles:          []string{},
		CreatedAt:      listNow.Add(-400 * 24 * time.Hour),
		LastAccessedAt: &accessed,
	}
	row := svc.BuildRow(account, req, nil)

	assert.Equal(t, "blocked", row[ColumnStatus])
	assert.Equal(t, "1 year 1 month", row[ColumnMemberFor])
	assert.Equal(t, "2 days 5 hours ago", row[ColumnAccess])
	assert.Equal(t, []string{}, row[ColumnRoles])
	assert.Empty(t, row[ColumnOperations])
	assert.Empty(t, row[ColumnUsername].(models.UsernameView).Href)
}

func TestPeopleList_RoleNames(t *testing.T) {
	svc := setupPeopleList(t)

	names, err := svc.RoleNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"administrator": "Administrator",
		"admin":         "admin",
		"editor":        "editor",
	}, names)
}

func TestPeopleList_GetOperations(t *testing.T) {
	svc := NewPeopleListService(nil, nil, nil, i18n.MustNew("en"))
	account := &models.Account{ID: 12, Name: "carol"}

	ops := svc.GetOperations(account, ListRequest{Path: "/admin/people", Viewer: adminViewer()})
	require.Contains(t, ops, "edit")
	assert.Equal(t, "/user/12/edit", ops["edit"].Href)
	assert.Equal(t, "/admin/people", ops["edit"].Query["destination"])
	assert.Equal(t, "/user/12/cancel", ops["delete"].Href)
	assert.Empty(t, ops["delete"].Query)

	assert.Empty(t, svc.GetOperations(account, ListRequest{Path: "/admin/people", Viewer: NewViewer(3)}))
}

func TestPeopleList_RenderPaging(t *testing.T) {
	svc := setupPeopleList(t, numberedAccounts(75)...)
	ctx := context.Background()
	req := ListRequest{Now: listNow, Path: "/admin/people", Viewer: adminViewer()}

	first, err := svc.Render(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Accounts.Rows, PeoplePageSize)
	assert.Equal(t, "/user/75", rowHrefs(first)[0])
	assert.Equal(t, 75, first.Pager.TotalItems)
	assert.Equal(t, 2, first.Pager.TotalPages)
	require.NotNil(t, first.Pager.Next)
	assert.Equal(t, "/admin/people?order=member_for&page=1&sort=desc", first.Pager.Next.Href)
	assert.Nil(t, first.Pager.Previous)

	req.Page = 1
	second, err := svc.Render(ctx, req)
	require.NoError(t, err)
	require.Len(t, second.Accounts.Rows, 25)
	assert.Equal(t, 1, second.Pager.Page)
	assert.Nil(t, second.Pager.Next)
	require.NotNil(t, second.Pager.First)

	seen := make(map[string]bool)
	for _, href := range append(rowHrefs(first), rowHrefs(second)...) {
		assert.NotEqual(t, "/user/0", href)
		seen[href] = true
	}
	assert.Len(t, seen, 75)
}

func TestPeopleList_RenderClampsPage(t *testing.T) {
	svc := setupPeopleList(t, numberedAccounts(75)...)

	page, err := svc.Render(context.Background(), ListRequest{Now: listNow, Path: "/admin/people", Page: 9, Viewer: adminViewer()})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pager.Page)
	assert.Len(t, page.Accounts.Rows, 25)
}

func TestPeopleList_RenderSorting(t *testing.T) {
	svc := setupPeopleList(t, numberedAccounts(3)...)
	ctx := context.Background()

	tests := []struct {
		name   string
		order  string
		sort   string
		want   []string
		active string
	}{
		{name: "default newest first", want: []string{"/user/3", "/user/2", "/user/1"}, active: ColumnMemberFor},
		{name: "username ascending", order: ColumnUsername, want: []string{"/user/1", "/user/2", "/user/3"}, active: ColumnUsername},
		{name: "username descending", order: ColumnUsername, sort: "desc", want: []string{"/user/3", "/user/2", "/user/1"}, active: ColumnUsername},
		{name: "member for ascending", order: ColumnMemberFor, sort: "asc", want: []string{"/user/1", "/user/2", "/user/3"}, active: ColumnMemberFor},
		{name: "roles not sortable", order: ColumnRoles, want: []string{"/user/3", "/user/2", "/user/1"}, active: ColumnMemberFor},
		{name: "unknown column", order: "uid; DROP TABLE users", want: []string{"/user/3", "/user/2", "/user/1"}, active: ColumnMemberFor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.Render(ctx, ListRequest{Now: listNow, Path: "/admin/people", Order: tc.order, Sort: tc.sort, Viewer: adminViewer()})
			require.NoError(t, err)
			assert.Equal(t, tc.want, rowHrefs(page))
			for _, col := range page.Accounts.Header {
				assert.Equal(t, col.Key == tc.active, col.Active, col.Key)
			}
		})
	}
}

func TestPeopleList_RenderEmpty(t *testing.T) {
	svc := setupPeopleList(t)

	page, err := svc.Render(context.Background(), ListRequest{Now: listNow, Path: "/admin/people", Page: 7, Viewer: adminViewer()})
	require.NoError(t, err)
	assert.Empty(t, page.Accounts.Rows)
	assert.NotNil(t, page.Accounts.Rows)
	assert.Equal(t, "No people available.", page.Accounts.Empty)
	assert.Equal(t, 0, page.Pager.TotalPages)
	assert.Equal(t, 0, page.Pager.Page)
}

func TestPeopleList_EditReturnsToSortedPage(t *testing.T) {
	svc := setupPeopleList(t, numberedAccounts(75)...)

	req := ListRequest{
		Now:         listNow,
		Path:        "/admin/people",
		Destination: "/admin/people?order=username&sort=asc&page=1",
		Order:       ColumnUsername,
		Sort:        SortAsc,
		Page:        1,
		Viewer:      adminViewer(),
	}
	page, err := svc.Render(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, page.Accounts.Rows, 25)
	assert.Equal(t, "/user/51", rowHrefs(page)[0])

	ops := page.Accounts.Rows[0][ColumnOperations].([]models.NamedOperation)
	require.Equal(t, "edit", ops[0].Name)
	assert.Equal(t, "/admin/people?order=username&sort=asc&page=1", ops[0].Query["destination"])

	require.NotNil(t, page.Pager.Previous)
	assert.Equal(t, "/admin/people?order=username&page=0&sort=asc", page.Pager.Previous.Href)
}

func TestPeopleList_RenderEscapesRoleLabels(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	testutil.InsertRole(t, db, "odd", "<b>Odd</b>", 5)
	testutil.InsertAccounts(t, db, testutil.Account{
		ID: 1, Name: "dave", Active: true, Created: listNow.Add(-time.Minute), Roles: []string{"odd", "authenticated"},
	})
	svc := NewPeopleListService(repository.NewAccountRepository(db), repository.NewRoleRepository(db), nil, i18n.MustNew("en"))

	page, err := svc.Render(context.Background(), ListRequest{Now: listNow, Path: "/admin/people", Viewer: adminViewer()})
	require.NoError(t, err)
	require.Len(t, page.Accounts.Rows, 1)
	roles := page.Accounts.Rows[0][ColumnRoles].([]string)
	require.Len(t, roles, 1)
	assert.False(t, strings.Contains(roles[0], "<b>"))
	assert.Equal(t, "&lt;b&gt;Odd&lt;/b&gt;", roles[0])
}
