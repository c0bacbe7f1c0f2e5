package repository

import (
	"context"
	"database/sql"

	"github.com/foliocms/folio/backend/internal/models"
)

// RoleAnonymous is the implicit role of unauthenticated visitors.
const RoleAnonymous = "anonymous"

// RoleRepository is the role registry.
type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	implicit := 0
	if role.Implicit {
		implicit = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roles (id, label, weight, implicit) VALUES (?, ?, ?, ?)
	`, role.ID, role.Label, role.Weight, implicit)
	return err
}

// List returns roles ordered by weight. The anonymous role is left out when
// excludeAnonymous is set.
func (r *RoleRepository) List(ctx context.Context, excludeAnonymous bool) ([]models.Role, error) {
	query := `SELECT id, label, weight, implicit FROM roles`
	var args []any
	if excludeAnonymous {
		query += ` WHERE id <> ?`
		args = append(args, RoleAnonymous)
	}
	query += ` ORDER BY weight, label`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		var implicit int
		if err := rows.Scan(&role.ID, &role.Label, &role.Weight, &implicit); err != nil {
			return nil, err
		}
		role.Implicit = implicit == 1
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
