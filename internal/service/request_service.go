package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.DonationRequest) error
	FindByID(ctx context.Context, id string) (*models.DonationRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.DonationRequest, int, error)
	UpdateWithStatusGuard(ctx context.Context, request *models.DonationRequest, prev models.RequestStatus) error
	Delete(ctx context.Context, id string) error
}

type hospitalReader interface {
	FindByID(ctx context.Context, id string) (*models.Hospital, error)
}

// RequestService owns the donation request lifecycle: creation, approval
// gating, volunteer registration, and closure. Every mutation validates its
// invariants against a snapshot read immediately before the write; the write
// itself is guarded on the snapshot status so a concurrent transition
// surfaces as a conflict instead of a lost update.
type RequestService struct {
	repo      requestStore
	hospitals hospitalReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs the service. cache may be nil.
func NewRequestService(repo requestStore, hospitals hospitalReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:      repo,
		hospitals: hospitals,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Aggregate views join request rows, so any request mutation drops them.
func (s *RequestService) dropAggregates(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, aggregateCachePattern)
}

// Create opens a new donation request. The status defaults to PENDING and is
// canonicalized uppercase; hospital display fields are snapshotted at
// creation time so later hospital edits never rewrite historical requests.
func (s *RequestService) Create(ctx context.Context, payload dto.CreateRequestPayload) (*models.DonationRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "bloodGroup, bloodUnitsCount, and priority are required")
	}

	rawStatus := payload.Status
	if rawStatus == "" {
		rawStatus = string(models.RequestStatusPending)
	}
	status, known := models.ParseRequestStatus(rawStatus)
	if !known {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown request status: "+rawStatus)
	}

	hospital, err := s.hospitals.FindByID(ctx, payload.HospitalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hospital not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load hospital")
	}

	request := &models.DonationRequest{
		HospitalID:       hospital.ID,
		HospitalName:     hospital.Name,
		HospitalAddress:  hospital.Address,
		HospitalPhone:    hospital.Phone,
		HospitalLocation: hospital.Location,
		PatientName:      payload.PatientName,
		BloodGroup:       payload.BloodGroup,
		BloodUnitsCount:  payload.BloodUnitsCount,
		Priority:         payload.Priority,
		RequestDate:      s.now().UTC(),
		RequiredDate:     parseOptionalTime(payload.RequiredDate),
		Location:         payload.Location,
		Status:           status,
		Approved:         status == models.RequestStatusApproved,
		AvailableDonors:  0,
		Volunteers:       models.VolunteerList{},
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create donation request")
	}
	s.dropAggregates(ctx)
	return request, nil
}

// Get returns one request.
func (s *RequestService) Get(ctx context.Context, id string) (*models.DonationRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation request")
	}
	return request, nil
}

// List returns requests matching the filter plus pagination metadata.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) ([]models.DonationRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list donation requests")
	}
	return requests, models.NewPagination(filter.Page, filter.Size, total), nil
}

// Update merges a patch onto a freshly loaded request and persists it.
//
// Invariants enforced here:
//   - REJECTED/CLOSED/COMPLETED are terminal: no status change leaves them.
//   - CLOSED/COMPLETED are only reachable when the snapshot was approved.
//   - `approved` flips to true only on an exact APPROVED status; any other
//     status update leaves the prior value untouched.
func (s *RequestService) Update(ctx context.Context, id string, patch dto.UpdateRequestPatch) (*models.DonationRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation request")
	}
	prev := request.Status

	if patch.Status != nil {
		status, known := models.ParseRequestStatus(*patch.Status)
		if !known {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown request status: "+*patch.Status)
		}
		if prev.Terminal() && status != prev {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request is already "+string(prev))
		}
		if (status == models.RequestStatusClosed || status == models.RequestStatusCompleted) && !request.Approved {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request must be approved before it can be closed or completed")
		}
		request.Status = status
		if status == models.RequestStatusApproved {
			request.Approved = true
		}

		now := s.now().UTC()
		switch status {
		case models.RequestStatusCompleted:
			if patch.FulfilledBy != nil {
				request.FulfilledBy = patch.FulfilledBy
			}
			if request.FulfilledBy != nil && request.FulfilledAt == nil {
				request.FulfilledAt = &now
			}
		case models.RequestStatusClosed:
			if request.ClosedAt == nil {
				request.ClosedAt = &now
			}
			if patch.ClosedReason != nil {
				request.ClosedReason = patch.ClosedReason
			}
		}
	}

	if patch.PatientName != nil {
		request.PatientName = *patch.PatientName
	}
	if patch.BloodGroup != nil {
		request.BloodGroup = *patch.BloodGroup
	}
	if patch.BloodUnitsCount != nil {
		if *patch.BloodUnitsCount <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "bloodUnitsCount must be positive")
		}
		request.BloodUnitsCount = *patch.BloodUnitsCount
	}
	if patch.Priority != nil {
		request.Priority = *patch.Priority
	}
	if patch.RequiredDate != nil {
		request.RequiredDate = parseOptionalTime(*patch.RequiredDate)
	}
	if patch.Location != nil {
		request.Location = *patch.Location
	}

	if err := s.repo.UpdateWithStatusGuard(ctx, request, prev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update donation request")
	}
	s.dropAggregates(ctx)
	return request, nil
}

// Volunteer registers a donor offer against an approved request. Volunteering
// stays open for as long as the request is not terminal, including while it
// is already IN_PROGRESS; fulfilment requires an explicit admin transition.
func (s *RequestService) Volunteer(ctx context.Context, requestID string, payload dto.VolunteerPayload) (*models.DonationRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donorName and contact are required")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation request")
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request is no longer open for volunteering")
	}
	// Either signal counts: legacy rows may carry status APPROVED without
	// the derived flag.
	if !request.Approved && request.Status != models.RequestStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request is not approved for volunteering")
	}

	prev := request.Status
	now := s.now().UTC()
	request.Volunteers = append(request.Volunteers, models.Volunteer{
		DonorID:              payload.DonorID,
		DonorName:            payload.DonorName,
		Contact:              payload.Contact,
		ExpectedDonationTime: parseOptionalTime(payload.ExpectedDonationTime),
		Message:              payload.Message,
		VolunteeredAt:        now,
	})
	request.AvailableDonors++
	request.Status = models.RequestStatusInProgress

	if err := s.repo.UpdateWithStatusGuard(ctx, request, prev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to register volunteer")
	}
	s.dropAggregates(ctx)
	return request, nil
}

// Delete removes a request permanently.
func (s *RequestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete donation request")
	}
	s.dropAggregates(ctx)
	return nil
}

// parseOptionalTime accepts ISO-8601 timestamps or bare dates; anything else
// is treated as absent, mirroring the tolerant upstream behaviour.
func parseOptionalTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}
	return nil
}
