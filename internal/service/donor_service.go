package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/internal/eligibility"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type donorDirectory interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type donorHistoryReader interface {
	ListAll(ctx context.Context) ([]models.DonationHistoryRecord, error)
}

// DonorView pairs a donor with their computed standing. The eligibility block
// is derived at read time and never stored.
type DonorView struct {
	models.User
	Eligibility eligibility.Result `json:"eligibility"`
}

// DonorService serves the public donor listing with the long-window
// eligibility annotation.
type DonorService struct {
	users        donorDirectory
	donations    donorHistoryReader
	cooldownDays int
	logger       *zap.Logger
	now          func() time.Time
}

// NewDonorService constructs the service. cooldownDays is the donor-listing
// window, longer than the history view window.
func NewDonorService(users donorDirectory, donations donorHistoryReader, cooldownDays int, logger *zap.Logger) *DonorService {
	if cooldownDays <= 0 {
		cooldownDays = eligibility.DonorCooldownDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonorService{
		users:        users,
		donations:    donations,
		cooldownDays: cooldownDays,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns donors with eligibility annotations. When onlyEligible is set,
// ineligible donors are filtered out after annotation; pagination metadata
// still reflects the unfiltered donor count.
func (s *DonorService) List(ctx context.Context, filter models.UserFilter, onlyEligible bool) ([]DonorView, *models.Pagination, error) {
	role := models.RoleDonor
	filter.Role = &role

	donors, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list donors")
	}

	history, err := s.donations.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation history")
	}
	byDonor := make(map[string][]models.DonationHistoryRecord)
	for _, rec := range history {
		byDonor[rec.DonorID] = append(byDonor[rec.DonorID], rec)
	}

	asOf := s.now().UTC()
	views := make([]DonorView, 0, len(donors))
	for _, donor := range donors {
		result := eligibility.Compute(byDonor[donor.ID], asOf, s.cooldownDays)
		if onlyEligible && result.Status != eligibility.StatusEligible {
			continue
		}
		views = append(views, DonorView{User: donor, Eligibility: result})
	}
	return views, models.NewPagination(filter.Page, filter.Size, total), nil
}
