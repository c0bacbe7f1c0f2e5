package repository

import (
	"context"
	"database/sql"

	"github.com/foliocms/folio/backend/internal/models"
)

// ContentTypeRepository is the content-type registry.
type ContentTypeRepository struct {
	db *sql.DB
}

func NewContentTypeRepository(db *sql.DB) *ContentTypeRepository {
	return &ContentTypeRepository{db: db}
}

func (r *ContentTypeRepository) Create(ctx context.Context, ct *models.ContentType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content_types (id, name, description) VALUES (?, ?, ?)
	`, ct.ID, ct.Name, ct.Description)
	return err
}

// List returns every content type ordered by display name.
func (r *ContentTypeRepository) List(ctx context.Context) ([]models.ContentType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM content_types ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.ContentType
	for rows.Next() {
		var ct models.ContentType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Description); err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	return types, rows.Err()
}
