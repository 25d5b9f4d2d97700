package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

const donationColumns = `id, donor_id, hospital_id, request_id, report_id, donation_date, donated_units, donation_type, status, remarks, created_at, updated_at`

// DonationRepository persists donation history events.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository constructs the repository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts a new donation history record.
func (r *DonationRepository) Create(ctx context.Context, record *models.DonationHistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO donation_history
	(id, donor_id, hospital_id, request_id, report_id, donation_date, donated_units, donation_type, status, remarks, created_at, updated_at)
	VALUES (:id, :donor_id, :hospital_id, :request_id, :report_id, :donation_date, :donated_units, :donation_type, :status, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create donation record: %w", err)
	}
	return nil
}

// FindByID fetches a donation record by identifier.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (*models.DonationHistoryRecord, error) {
	query := `SELECT ` + donationColumns + ` FROM donation_history WHERE id = $1 LIMIT 1`
	var record models.DonationHistoryRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns donation records matching the filter plus the total count.
// Date bounds apply to donation_date, inclusive on both ends.
func (r *DonationRepository) List(ctx context.Context, filter models.DonationFilter) ([]models.DonationHistoryRecord, int, error) {
	baseQuery := `FROM donation_history WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.DonorID != "" {
		conditions = append(conditions, fmt.Sprintf("donor_id = $%d", len(args)+1))
		args = append(args, filter.DonorID)
	}
	if filter.HospitalID != "" {
		conditions = append(conditions, fmt.Sprintf("hospital_id = $%d", len(args)+1))
		args = append(args, filter.HospitalID)
	}
	if filter.RequestID != "" {
		conditions = append(conditions, fmt.Sprintf("request_id = $%d", len(args)+1))
		args = append(args, filter.RequestID)
	}
	if filter.ReportID != "" {
		conditions = append(conditions, fmt.Sprintf("report_id = $%d", len(args)+1))
		args = append(args, filter.ReportID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DonationType != "" {
		conditions = append(conditions, fmt.Sprintf("donation_type = $%d", len(args)+1))
		args = append(args, filter.DonationType)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("donation_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("donation_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY donation_date DESC NULLS LAST LIMIT %d OFFSET %d", donationColumns, baseQuery, size, offset)

	var records []models.DonationHistoryRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list donation records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count donation records: %w", err)
	}

	return records, total, nil
}

// ListByDonor returns every history record for one donor, newest first.
func (r *DonationRepository) ListByDonor(ctx context.Context, donorID string) ([]models.DonationHistoryRecord, error) {
	query := `SELECT ` + donationColumns + ` FROM donation_history WHERE donor_id = $1 ORDER BY donation_date DESC NULLS LAST`
	var records []models.DonationHistoryRecord
	if err := r.db.SelectContext(ctx, &records, query, donorID); err != nil {
		return nil, fmt.Errorf("list donor history: %w", err)
	}
	return records, nil
}

// ListAll returns the full history set. Used by bulk eligibility passes
// (donor listings, notification audience resolution) which tolerate
// O(donors x history) work.
func (r *DonationRepository) ListAll(ctx context.Context) ([]models.DonationHistoryRecord, error) {
	query := `SELECT ` + donationColumns + ` FROM donation_history`
	var records []models.DonationHistoryRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list donation history: %w", err)
	}
	return records, nil
}

// ListByRequestIDs returns every history record referencing one of the given
// requests. Used for completed-request statistics.
func (r *DonationRepository) ListByRequestIDs(ctx context.Context, requestIDs []string) ([]models.DonationHistoryRecord, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+donationColumns+` FROM donation_history WHERE request_id IN (?)`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("build history lookup: %w", err)
	}
	query = r.db.Rebind(query)
	var records []models.DonationHistoryRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list history by requests: %w", err)
	}
	return records, nil
}

// Update persists an admin correction to an existing record.
func (r *DonationRepository) Update(ctx context.Context, record *models.DonationHistoryRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE donation_history SET
	hospital_id = :hospital_id, request_id = :request_id, report_id = :report_id,
	donation_date = :donation_date, donated_units = :donated_units, donation_type = :donation_type,
	status = :status, remarks = :remarks, updated_at = :updated_at
	WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update donation record: %w", err)
	}
	return nil
}

// Delete removes a donation record. Returns sql.ErrNoRows when nothing
// matched the id.
func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM donation_history WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete donation record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete donation record: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
