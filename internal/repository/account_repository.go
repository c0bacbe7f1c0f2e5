package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var (
	ErrInvalidQueryField    = errors.New("field is not queryable")
	ErrInvalidQueryOperator = errors.New("unsupported query operator")
)

// accountFields are the users columns a query may filter or sort on.
var accountFields = map[string]bool{
	"uid":     true,
	"name":    true,
	"mail":    true,
	"status":  true,
	"created": true,
	"access":  true,
}

var queryOperators = map[string]bool{
	"=":  true,
	"<>": true,
	"<":  true,
	"<=": true,
	">":  true,
	">=": true,
}

type accountRow struct {
	bun.BaseModel `bun:"table:users"`

	UID     int64  `bun:"uid,pk"`
	Name    string `bun:"name"`
	Mail    string `bun:"mail"`
	Status  int    `bun:"status"`
	Created int64  `bun:"created"`
	Access  int64  `bun:"access"`
}

type accountRoleRow struct {
	bun.BaseModel `bun:"table:users_roles"`

	UID int64  `bun:"uid,pk"`
	RID string `bun:"rid,pk"`
}

func (row *accountRow) toModel(roles []string) *models.Account {
	a := &models.Account{
		ID:        row.UID,
		Name:      row.Name,
		Mail:      row.Mail,
		IsActive:  row.Status == 1,
		Roles:     roles,
		CreatedAt: time.Unix(row.Created, 0).UTC(),
	}
	if row.Access > 0 {
		t := time.Unix(row.Access, 0).UTC()
		a.LastAccessedAt = &t
	}
	if a.Roles == nil {
		a.Roles = []string{}
	}
	return a
}

// AccountRepository is the user entity store. Reads go through bun so the
// listing can compose conditions, sorting and paging.
type AccountRepository struct {
	db  *sql.DB
	bun *bun.DB
}

// NewAccountRepository wraps db for raw writes and bun reads.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{
		db:  db,
		bun: bun.NewDB(db, sqlitedialect.New()),
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	status := 0
	if account.IsActive {
		status = 1
	}
	var access int64
	if account.LastAccessedAt != nil {
		access = account.LastAccessedAt.Unix()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (uid, name, mail, status, created, access)
		VALUES (?, ?, ?, ?, ?, ?)
	`, account.ID, account.Name, account.Mail, status, account.CreatedAt.Unix(), access); err != nil {
		return err
	}
	for _, rid := range account.Roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users_roles (uid, rid) VALUES (?, ?)`, account.ID, rid); err != nil {
			return fmt.Errorf("assign role %s: %w", rid, err)
		}
	}
	return tx.Commit()
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	row := new(accountRow)
	if err := r.bun.NewSelect().Model(row).Where("uid = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	roles, err := r.loadRoles(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return row.toModel(roles[id]), nil
}

// TouchAccess records a request by the account, skipping the write when the
// stored value is newer than now minus interval.
func (r *AccountRepository) TouchAccess(ctx context.Context, id int64, now time.Time, interval time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET access = ? WHERE uid = ? AND access < ?
	`, now.Unix(), id, now.Add(-interval).Unix())
	return err
}

// LoadMultiple returns the accounts for ids in the order given. Unknown ids
// are skipped.
func (r *AccountRepository) LoadMultiple(ctx context.Context, ids []int64) ([]*models.Account, error) {
	if len(ids) == 0 {
		return []*models.Account{}, nil
	}

	var rows []accountRow
	if err := r.bun.NewSelect().Model(&rows).Where("uid IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, err
	}
	byID := make(map[int64]*accountRow, len(rows))
	for i := range rows {
		byID[rows[i].UID] = &rows[i]
	}

	roles, err := r.loadRoles(ctx, ids)
	if err != nil {
		return nil, err
	}

	accounts := make([]*models.Account, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			continue
		}
		accounts = append(accounts, row.toModel(roles[id]))
	}
	return accounts, nil
}

func (r *AccountRepository) loadRoles(ctx context.Context, ids []int64) (map[int64][]string, error) {
	var links []accountRoleRow
	if err := r.bun.NewSelect().
		Model(&links).
		Where("uid IN (?)", bun.In(ids)).
		OrderExpr("rid ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[int64][]string, len(ids))
	for _, l := range links {
		out[l.UID] = append(out[l.UID], l.RID)
	}
	return out, nil
}

// Query starts an id query over accounts.
func (r *AccountRepository) Query() *AccountQuery {
	return &AccountQuery{
		q: r.bun.NewSelect().Model((*accountRow)(nil)).Column("uid"),
	}
}

// QueryResult is one executed page of account ids.
type QueryResult struct {
	IDs      []int64
	Total    int
	Page     int
	PageSize int
}

// AccountQuery collects conditions, sort and paging before Execute. The
// first invalid call is remembered and returned by Execute.
type AccountQuery struct {
	q        *bun.SelectQuery
	sorted   bool
	pageSize int
	page     int
	err      error
}

// Condition filters on field compared to value with op. Only whitelisted
// fields and operators are accepted.
func (q *AccountQuery) Condition(field string, value any, op string) *AccountQuery {
	if q.err != nil {
		return q
	}
	if !accountFields[field] {
		q.err = fmt.Errorf("%s: %w", field, ErrInvalidQueryField)
		return q
	}
	if !queryOperators[op] {
		q.err = fmt.Errorf("%s: %w", op, ErrInvalidQueryOperator)
		return q
	}
	q.q = q.q.Where("? "+op+" ?", bun.Ident(field), value)
	return q
}

// Pager limits the result to one page. page is zero based and is clamped to
// the last page at execution time.
func (q *AccountQuery) Pager(pageSize, page int) *AccountQuery {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 0 {
		page = 0
	}
	q.pageSize = pageSize
	q.page = page
	return q
}

// TableSort orders by field in direction ("asc" or "desc"). Ties fall back
// to uid so paging is stable.
func (q *AccountQuery) TableSort(field, direction string) *AccountQuery {
	if q.err != nil {
		return q
	}
	if !accountFields[field] {
		q.err = fmt.Errorf("%s: %w", field, ErrInvalidQueryField)
		return q
	}
	dir := "ASC"
	if strings.EqualFold(direction, "desc") {
		dir = "DESC"
	}
	q.q = q.q.OrderExpr("? "+dir, bun.Ident(field))
	q.sorted = true
	return q
}

// Execute counts the matches and returns the ids of the requested page.
func (q *AccountQuery) Execute(ctx context.Context) (*QueryResult, error) {
	if q.err != nil {
		return nil, q.err
	}

	total, err := q.q.Count(ctx)
	if err != nil {
		return nil, err
	}

	res := &QueryResult{Total: total, IDs: []int64{}}
	if q.sorted {
		q.q = q.q.OrderExpr("uid ASC")
	}
	if q.pageSize > 0 {
		page := q.page
		if last := max(total-1, 0) / q.pageSize; page > last {
			page = last
		}
		res.Page = page
		res.PageSize = q.pageSize
		q.q = q.q.Limit(q.pageSize).Offset(page * q.pageSize)
	}

	if err := q.q.Scan(ctx, &res.IDs); err != nil {
		return nil, err
	}
	return res, nil
}
