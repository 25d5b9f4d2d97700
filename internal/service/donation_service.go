package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/eligibility"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type donationStore interface {
	Create(ctx context.Context, record *models.DonationHistoryRecord) error
	FindByID(ctx context.Context, id string) (*models.DonationHistoryRecord, error)
	List(ctx context.Context, filter models.DonationFilter) ([]models.DonationHistoryRecord, int, error)
	ListByDonor(ctx context.Context, donorID string) ([]models.DonationHistoryRecord, error)
	Update(ctx context.Context, record *models.DonationHistoryRecord) error
	Delete(ctx context.Context, id string) error
}

// DonationService manages the donation history ledger and answers per-donor
// eligibility queries against it.
type DonationService struct {
	repo         donationStore
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	cooldownDays int
	now          func() time.Time
}

// NewDonationService constructs the service. cooldownDays applies to history
// eligibility views; cache may be nil.
func NewDonationService(repo donationStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cooldownDays int) *DonationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cooldownDays <= 0 {
		cooldownDays = eligibility.HistoryCooldownDays
	}
	return &DonationService{
		repo:         repo,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		cooldownDays: cooldownDays,
		now:          time.Now,
	}
}

// dropAggregates clears cached aggregate views after a ledger mutation.
// Best effort: a failed invalidation is logged, never surfaced.
func (s *DonationService) dropAggregates(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, aggregateCachePattern)
}

// Create records a donation event. The donation date is required; foreign
// references are stored as given, without canonicality checks.
func (s *DonationService) Create(ctx context.Context, payload dto.CreateDonationPayload) (*models.DonationHistoryRecord, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donorId and donationDate are required")
	}
	donationDate := parseOptionalTime(payload.DonationDate)
	if donationDate == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donationDate must be an ISO-8601 date")
	}

	status := payload.Status
	if status == "" {
		status = models.DonationStatusPending
	}

	record := &models.DonationHistoryRecord{
		DonorID:      payload.DonorID,
		HospitalID:   payload.HospitalID,
		RequestID:    payload.RequestID,
		ReportID:     payload.ReportID,
		DonationDate: donationDate,
		DonatedUnits: payload.DonatedUnits,
		DonationType: payload.DonationType,
		Status:       status,
		Remarks:      payload.Remarks,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create donation record")
	}
	s.dropAggregates(ctx)
	return record, nil
}

// Get returns one history record.
func (s *DonationService) Get(ctx context.Context, id string) (*models.DonationHistoryRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation record")
	}
	return record, nil
}

// List returns history records matching the filter plus pagination metadata.
func (s *DonationService) List(ctx context.Context, filter models.DonationFilter) ([]models.DonationHistoryRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list donation records")
	}
	return records, models.NewPagination(filter.Page, filter.Size, total), nil
}

// Update applies an admin correction to an existing record.
func (s *DonationService) Update(ctx context.Context, id string, patch dto.UpdateDonationPatch) (*models.DonationHistoryRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation record")
	}

	if patch.HospitalID != nil {
		record.HospitalID = *patch.HospitalID
	}
	if patch.RequestID != nil {
		record.RequestID = *patch.RequestID
	}
	if patch.ReportID != nil {
		record.ReportID = *patch.ReportID
	}
	if patch.DonationDate != nil {
		parsed := parseOptionalTime(*patch.DonationDate)
		if parsed == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "donationDate must be an ISO-8601 date")
		}
		record.DonationDate = parsed
	}
	if patch.DonatedUnits != nil {
		record.DonatedUnits = patch.DonatedUnits
	}
	if patch.DonationType != nil {
		record.DonationType = *patch.DonationType
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
	if patch.Remarks != nil {
		record.Remarks = *patch.Remarks
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update donation record")
	}
	s.dropAggregates(ctx)
	return record, nil
}

// Delete removes a history record.
func (s *DonationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete donation record")
	}
	s.dropAggregates(ctx)
	return nil
}

// Eligibility derives the donor's current standing from their full history
// using the history cooldown window. Computed fresh on every call.
func (s *DonationService) Eligibility(ctx context.Context, donorID string) (*eligibility.Result, error) {
	records, err := s.repo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donor history")
	}
	result := eligibility.Compute(records, s.now().UTC(), s.cooldownDays)
	return &result, nil
}
