package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

const hospitalColumns = `id, name, address, phone, location, latitude, longitude, created_at, updated_at`

// HospitalRepository reads hospital records. Hospital lifecycle management
// lives in a separate admin surface; this service only consumes snapshots.
type HospitalRepository struct {
	db *sqlx.DB
}

// NewHospitalRepository constructs the repository.
func NewHospitalRepository(db *sqlx.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// FindByID fetches a hospital by identifier.
func (r *HospitalRepository) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1 LIMIT 1`
	var hospital models.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, id); err != nil {
		return nil, err
	}
	return &hospital, nil
}

// FindByIDs fetches hospitals in bulk, keyed by id. Unknown ids are simply
// absent from the result.
func (r *HospitalRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Hospital, error) {
	result := make(map[string]models.Hospital, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+hospitalColumns+` FROM hospitals WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build hospital lookup: %w", err)
	}
	query = r.db.Rebind(query)
	var hospitals []models.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query, args...); err != nil {
		return nil, fmt.Errorf("find hospitals by ids: %w", err)
	}
	for _, hospital := range hospitals {
		result[hospital.ID] = hospital
	}
	return result, nil
}
