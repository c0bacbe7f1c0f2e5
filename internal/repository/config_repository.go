package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/foliocms/folio/backend/internal/models"
)

var ErrSettingNotFound = errors.New("setting not found")

// ConfigRepository stores named configuration objects as JSON values keyed
// by (name, key).
type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get returns the raw JSON value stored for name and key.
func (r *ConfigRepository) Get(ctx context.Context, name, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE name = ? AND key = ?`, name, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s:%s: %w", name, key, ErrSettingNotFound)
	}
	return value, err
}

func (r *ConfigRepository) GetAll(ctx context.Context, name string) ([]*models.ConfigValue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, key, value, updated_at FROM config WHERE name = ? ORDER BY key`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*models.ConfigValue
	for rows.Next() {
		v := &models.ConfigValue{}
		if err := rows.Scan(&v.Name, &v.Key, &v.Value, &v.UpdatedAt); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Config returns an editable handle on the named configuration object.
func (r *ConfigRepository) Config(name string) *ConfigObject {
	return &ConfigObject{repo: r, name: name}
}

type pendingValue struct {
	key   string
	value any
}

// ConfigObject batches writes to one configuration object. Nothing is
// written until Save, which applies every pending key in one transaction.
type ConfigObject struct {
	repo    *ConfigRepository
	name    string
	pending []pendingValue
}

func (c *ConfigObject) Name() string { return c.name }

// Get decodes the stored value for key into dst.
func (c *ConfigObject) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.repo.Get(ctx, c.name, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s:%s: %w", c.name, key, err)
	}
	return nil
}

// Set stages a value. A later Set of the same key wins.
func (c *ConfigObject) Set(key string, value any) *ConfigObject {
	for i := range c.pending {
		if c.pending[i].key == key {
			c.pending[i].value = value
			return c
		}
	}
	c.pending = append(c.pending, pendingValue{key: key, value: value})
	return c
}

// Save writes every pending value in one transaction.
func (c *ConfigObject) Save(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}

	encoded := make([]string, len(c.pending))
	for i, p := range c.pending {
		b, err := json.Marshal(p.value)
		if err != nil {
			return fmt.Errorf("encode %s:%s: %w", c.name, p.key, err)
		}
		encoded[i] = string(b)
	}

	tx, err := c.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for i, p := range c.pending {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO config (name, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(name, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, c.name, p.key, encoded[i], now); err != nil {
			return fmt.Errorf("save %s:%s: %w", c.name, p.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	c.pending = nil
	return nil
}
