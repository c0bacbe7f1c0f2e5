package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/pkg/testutil"
)

func TestAccountRepository_CreateAndGetByID(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	repo := NewAccountRepository(db)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	account := &models.Account{
		ID:        7,
		Name:      "editor",
		Mail:      "editor@example.com",
		IsActive:  true,
		Roles:     []string{"administrator", "authenticated"},
		CreatedAt: created,
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if stored.Name != "editor" || !stored.IsActive {
		t.Fatalf("unexpected account: %+v", stored)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Fatalf("expected created %v, got %v", created, stored.CreatedAt)
	}
	if stored.LastAccessedAt != nil {
		t.Fatalf("expected no last access, got %v", stored.LastAccessedAt)
	}
	if len(stored.Roles) != 2 || stored.Roles[0] != "administrator" || stored.Roles[1] != "authenticated" {
		t.Fatalf("unexpected roles: %v", stored.Roles)
	}
}

func TestAccountRepository_TouchAccessHonoursInterval(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	now := time.Unix(1_700_000_000, 0)
	testutil.InsertAccounts(t, db, testutil.Account{ID: 1, Name: "a", Active: true, Created: now.Add(-time.Hour)})
	repo := NewAccountRepository(db)
	ctx := context.Background()

	if err := repo.TouchAccess(ctx, 1, now, 3*time.Minute); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := repo.TouchAccess(ctx, 1, now.Add(time.Minute), 3*time.Minute); err != nil {
		t.Fatalf("second touch: %v", err)
	}

	account, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.LastAccessedAt == nil || account.LastAccessedAt.Unix() != now.Unix() {
		t.Fatalf("expected access %d, got %v", now.Unix(), account.LastAccessedAt)
	}
}

func TestAccountQuery_ExcludesAnonymousAndPages(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	base := time.Unix(1_600_000_000, 0)
	for i := 1; i <= 75; i++ {
		testutil.InsertAccounts(t, db, testutil.Account{
			ID:      int64(i),
			Name:    fmt.Sprintf("user%02d", i),
			Active:  true,
			Created: base.Add(time.Duration(i) * time.Minute),
		})
	}
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first, err := repo.Query().Condition("uid", 0, "<>").Pager(50, 0).TableSort("created", "desc").Execute(ctx)
	if err != nil {
		t.Fatalf("execute first page: %v", err)
	}
	if first.Total != 75 {
		t.Fatalf("expected 75 total, got %d", first.Total)
	}
	if len(first.IDs) != 50 {
		t.Fatalf("expected 50 ids, got %d", len(first.IDs))
	}
	if first.IDs[0] != 75 {
		t.Fatalf("expected newest account first, got %d", first.IDs[0])
	}

	second, err := repo.Query().Condition("uid", 0, "<>").Pager(50, 1).TableSort("created", "desc").Execute(ctx)
	if err != nil {
		t.Fatalf("execute second page: %v", err)
	}
	if len(second.IDs) != 25 {
		t.Fatalf("expected 25 ids on second page, got %d", len(second.IDs))
	}
	for _, id := range append(first.IDs, second.IDs...) {
		if id == 0 {
			t.Fatal("anonymous account returned by query")
		}
	}
}

func TestAccountQuery_ClampsPageBeyondEnd(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	now := time.Unix(1_600_000_000, 0)
	testutil.InsertAccounts(t, db,
		testutil.Account{ID: 1, Name: "a", Created: now},
		testutil.Account{ID: 2, Name: "b", Created: now},
	)
	repo := NewAccountRepository(db)

	res, err := repo.Query().Condition("uid", 0, "<>").Pager(50, 9).TableSort("name", "asc").Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Page != 0 || len(res.IDs) != 2 {
		t.Fatalf("expected clamped page 0 with 2 ids, got page %d ids %v", res.Page, res.IDs)
	}
}

func TestAccountQuery_ClampsPageWhenNothingMatches(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	repo := NewAccountRepository(db)

	res, err := repo.Query().Condition("uid", 0, "<>").Pager(50, 7).Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Total != 0 || res.Page != 0 || len(res.IDs) != 0 {
		t.Fatalf("expected empty page 0, got total %d page %d ids %v", res.Total, res.Page, res.IDs)
	}
}

func TestAccountQuery_RejectsUnknownFieldAndOperator(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	repo := NewAccountRepository(db)
	ctx := context.Background()

	if _, err := repo.Query().Condition("pass", "x", "=").Execute(ctx); !errors.Is(err, ErrInvalidQueryField) {
		t.Fatalf("expected ErrInvalidQueryField, got %v", err)
	}
	if _, err := repo.Query().Condition("uid", 0, "LIKE").Execute(ctx); !errors.Is(err, ErrInvalidQueryOperator) {
		t.Fatalf("expected ErrInvalidQueryOperator, got %v", err)
	}
	if _, err := repo.Query().TableSort("uid; DROP TABLE users", "asc").Execute(ctx); !errors.Is(err, ErrInvalidQueryField) {
		t.Fatalf("expected ErrInvalidQueryField for sort, got %v", err)
	}
}

func TestAccountRepository_LoadMultipleKeepsOrder(t *testing.T) {
	db, _, cleanup := testutil.SetupTest(t)
	defer cleanup()

	now := time.Unix(1_600_000_000, 0)
	testutil.InsertAccounts(t, db,
		testutil.Account{ID: 1, Name: "a", Created: now},
		testutil.Account{ID: 2, Name: "b", Created: now, LastAccess: now.Add(time.Hour), Roles: []string{"administrator"}},
		testutil.Account{ID: 3, Name: "c", Created: now},
	)
	repo := NewAccountRepository(db)

	accounts, err := repo.LoadMultiple(context.Background(), []int64{3, 1, 99, 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	if accounts[0].ID != 3 || accounts[1].ID != 1 || accounts[2].ID != 2 {
		t.Fatalf("unexpected order: %d %d %d", accounts[0].ID, accounts[1].ID, accounts[2].ID)
	}
	if accounts[2].LastAccessedAt == nil || len(accounts[2].Roles) != 1 {
		t.Fatalf("expected access time and role on account 2, got %+v", accounts[2])
	}
}
