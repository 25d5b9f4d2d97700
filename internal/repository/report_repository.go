package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

const reportColumns = `id, donor_id, hospital_id, eligible, hemoglobin, blood_pressure, notes, report_date, created_at`

// ReportRepository reads medical screening reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindByID fetches a medical report by identifier.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.MedicalReport, error) {
	query := `SELECT ` + reportColumns + ` FROM medical_reports WHERE id = $1 LIMIT 1`
	var report models.MedicalReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// FindByIDs fetches medical reports in bulk, keyed by id.
func (r *ReportRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.MedicalReport, error) {
	result := make(map[string]models.MedicalReport, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+reportColumns+` FROM medical_reports WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build report lookup: %w", err)
	}
	query = r.db.Rebind(query)
	var reports []models.MedicalReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("find reports by ids: %w", err)
	}
	for _, report := range reports {
		result[report.ID] = report
	}
	return result, nil
}
