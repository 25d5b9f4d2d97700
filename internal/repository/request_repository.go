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

const requestColumns = `id, hospital_id, hospital_name, hospital_address, hospital_phone, hospital_location,
patient_name, blood_group, blood_units_count, priority, request_date, required_date, location,
status, approved, available_donors, volunteers, fulfilled_by, fulfilled_at, closed_at, closed_reason,
created_at, updated_at`

// RequestRepository persists donation requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new donation request.
func (r *RequestRepository) Create(ctx context.Context, request *models.DonationRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.RequestDate.IsZero() {
		request.RequestDate = now
	}
	if request.Volunteers == nil {
		request.Volunteers = models.VolunteerList{}
	}

	const query = `INSERT INTO donation_requests
	(id, hospital_id, hospital_name, hospital_address, hospital_phone, hospital_location,
	 patient_name, blood_group, blood_units_count, priority, request_date, required_date, location,
	 status, approved, available_donors, volunteers, fulfilled_by, fulfilled_at, closed_at, closed_reason,
	 created_at, updated_at)
	VALUES (:id, :hospital_id, :hospital_name, :hospital_address, :hospital_phone, :hospital_location,
	 :patient_name, :blood_group, :blood_units_count, :priority, :request_date, :required_date, :location,
	 :status, :approved, :available_donors, :volunteers, :fulfilled_by, :fulfilled_at, :closed_at, :closed_reason,
	 :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create donation request: %w", err)
	}
	return nil
}

// FindByID fetches a donation request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests WHERE id = $1 LIMIT 1`
	var request models.DonationRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns donation requests matching the filter plus the total count,
// newest request date first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.DonationRequest, int, error) {
	baseQuery := `FROM donation_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.HospitalID != "" {
		conditions = append(conditions, fmt.Sprintf("hospital_id = $%d", len(args)+1))
		args = append(args, filter.HospitalID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.BloodGroup != "" {
		conditions = append(conditions, fmt.Sprintf("blood_group = $%d", len(args)+1))
		args = append(args, filter.BloodGroup)
	}
	if filter.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, filter.Priority)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY request_date DESC LIMIT %d OFFSET %d", requestColumns, baseQuery, size, offset)

	var requests []models.DonationRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list donation requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count donation requests: %w", err)
	}

	return requests, total, nil
}

// Update persists the merged request unconditionally.
func (r *RequestRepository) Update(ctx context.Context, request *models.DonationRequest) error {
	request.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, updateRequestQuery(""), request); err != nil {
		return fmt.Errorf("update donation request: %w", err)
	}
	return nil
}

// UpdateWithStatusGuard persists the merged request only when the stored
// status still matches the snapshot the caller validated against. Returns
// sql.ErrNoRows when a concurrent writer moved the request first.
func (r *RequestRepository) UpdateWithStatusGuard(ctx context.Context, request *models.DonationRequest, prev models.RequestStatus) error {
	request.UpdatedAt = time.Now().UTC()
	params := map[string]interface{}{
		"prev_status": prev,
	}
	rows, err := sqlx.NamedExecContext(ctx, r.db, updateRequestQuery(" AND status = :prev_status"), mergeRequestParams(request, params))
	if err != nil {
		return fmt.Errorf("update donation request: %w", err)
	}
	affected, err := rows.RowsAffected()
	if err != nil {
		return fmt.Errorf("check request update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a donation request and reports whether a row existed.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM donation_requests WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete donation request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check request delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// NearbyHospitals finds hospitals within radiusMeters of the origin, nearest
// first, using the haversine great-circle distance.
func (r *RequestRepository) NearbyHospitals(ctx context.Context, lat, lng, radiusMeters float64) ([]models.NearbyHospital, error) {
	const query = `SELECT id AS hospital_id,
	(6371000 * acos(least(1.0, greatest(-1.0,
		cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2)) +
		sin(radians($1)) * sin(radians(latitude))
	)))) AS distance_meters
	FROM hospitals
	WHERE (6371000 * acos(least(1.0, greatest(-1.0,
		cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2)) +
		sin(radians($1)) * sin(radians(latitude))
	)))) <= $3
	ORDER BY distance_meters ASC`
	var hospitals []models.NearbyHospital
	if err := r.db.SelectContext(ctx, &hospitals, query, lat, lng, radiusMeters); err != nil {
		return nil, fmt.Errorf("nearby hospitals: %w", err)
	}
	return hospitals, nil
}

func updateRequestQuery(extraWhere string) string {
	return `UPDATE donation_requests SET
	patient_name = :patient_name, blood_group = :blood_group, blood_units_count = :blood_units_count,
	priority = :priority, required_date = :required_date, location = :location,
	status = :status, approved = :approved, available_donors = :available_donors, volunteers = :volunteers,
	fulfilled_by = :fulfilled_by, fulfilled_at = :fulfilled_at, closed_at = :closed_at, closed_reason = :closed_reason,
	updated_at = :updated_at
	WHERE id = :id` + extraWhere
}

func mergeRequestParams(request *models.DonationRequest, extra map[string]interface{}) map[string]interface{} {
	params := map[string]interface{}{
		"id":                request.ID,
		"patient_name":      request.PatientName,
		"blood_group":       request.BloodGroup,
		"blood_units_count": request.BloodUnitsCount,
		"priority":          request.Priority,
		"required_date":     request.RequiredDate,
		"location":          request.Location,
		"status":            request.Status,
		"approved":          request.Approved,
		"available_donors":  request.AvailableDonors,
		"volunteers":        request.Volunteers,
		"fulfilled_by":      request.FulfilledBy,
		"fulfilled_at":      request.FulfilledAt,
		"closed_at":         request.ClosedAt,
		"closed_reason":     request.ClosedReason,
		"updated_at":        request.UpdatedAt,
	}
	for k, v := range extra {
		params[k] = v
	}
	return params
}
