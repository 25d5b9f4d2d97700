package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type historyLister interface {
	List(ctx context.Context, filter models.DonationFilter) ([]models.DonationHistoryRecord, int, error)
	ListByRequestIDs(ctx context.Context, requestIDs []string) ([]models.DonationHistoryRecord, error)
}

type userBulkReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

type hospitalBulkReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Hospital, error)
}

type requestBulkReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.DonationRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.DonationRequest, int, error)
	NearbyHospitals(ctx context.Context, lat, lng, radiusMeters float64) ([]models.NearbyHospital, error)
}

type reportBulkReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.MedicalReport, error)
}

// AggregatedHistory is the reporting endpoint payload: joined rows plus a
// summary computed over the same filtered set.
type AggregatedHistory struct {
	Rows       []models.AggregateView  `json:"rows"`
	Summary    models.AggregateSummary `json:"summary"`
	Pagination *models.Pagination      `json:"-"`
}

// GeoRequestListing is the proximity-ordered request browse payload.
type GeoRequestListing struct {
	Requests   []models.DonationRequest      `json:"requests"`
	Stats      *models.CompletedRequestStats `json:"stats,omitempty"`
	Pagination *models.Pagination            `json:"-"`
}

// AggregateService builds read-time joined projections of donation history.
// Joins are performed application-side against bulk id lookups so that a
// malformed foreign reference degrades to a nil sub-object instead of failing
// the whole query.
type AggregateService struct {
	donations historyLister
	users     userBulkReader
	hospitals hospitalBulkReader
	requests  requestBulkReader
	reports   reportBulkReader
	cache     *CacheService
	cacheTTL  time.Duration
	geoRadius float64
	logger    *zap.Logger
}

// NewAggregateService constructs the service.
func NewAggregateService(
	donations historyLister,
	users userBulkReader,
	hospitals hospitalBulkReader,
	requests requestBulkReader,
	reports reportBulkReader,
	cache *CacheService,
	cacheTTL time.Duration,
	geoRadius float64,
	logger *zap.Logger,
) *AggregateService {
	if geoRadius <= 0 {
		geoRadius = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregateService{
		donations: donations,
		users:     users,
		hospitals: hospitals,
		requests:  requests,
		reports:   reports,
		cache:     cache,
		cacheTTL:  cacheTTL,
		geoRadius: geoRadius,
		logger:    logger,
	}
}

// AggregateHistory returns the joined history rows matching the filter along
// with the per-set summary. Results are cached per filter shape.
func (s *AggregateService) AggregateHistory(ctx context.Context, filter models.DonationFilter) (*AggregatedHistory, error) {
	cacheKey := aggregateCacheKey(filter)
	if s.cache.Enabled() {
		var cached AggregatedHistory
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	records, total, err := s.donations.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load donation history")
	}

	rows, err := s.joinRecords(ctx, records)
	if err != nil {
		return nil, err
	}

	result := &AggregatedHistory{
		Rows:       rows,
		Summary:    summarize(rows),
		Pagination: models.NewPagination(filter.Page, filter.Size, total),
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("aggregate cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// joinRecords resolves each record's references in four bulk lookups and
// assembles the projected rows. Request and report references are only joined
// when they carry the canonical identifier shape; user and hospital ids are
// always attempted. A missing relation yields a nil sub-object, never a
// dropped row.
func (s *AggregateService) joinRecords(ctx context.Context, records []models.DonationHistoryRecord) ([]models.AggregateView, error) {
	userIDs := make(map[string]struct{})
	hospitalIDs := make(map[string]struct{})
	requestIDs := make(map[string]struct{})
	reportIDs := make(map[string]struct{})

	for _, rec := range records {
		if rec.DonorID != "" {
			userIDs[rec.DonorID] = struct{}{}
		}
		if rec.HospitalID != "" {
			hospitalIDs[rec.HospitalID] = struct{}{}
		}
		if models.EntityRef(rec.RequestID).Valid() {
			requestIDs[rec.RequestID] = struct{}{}
		}
		if models.EntityRef(rec.ReportID).Valid() {
			reportIDs[rec.ReportID] = struct{}{}
		}
	}

	users, err := s.users.FindByIDs(ctx, keys(userIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve donors")
	}
	hospitals, err := s.hospitals.FindByIDs(ctx, keys(hospitalIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve hospitals")
	}
	requests, err := s.requests.FindByIDs(ctx, keys(requestIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve requests")
	}
	reports, err := s.reports.FindByIDs(ctx, keys(reportIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve reports")
	}

	rows := make([]models.AggregateView, 0, len(records))
	for _, rec := range records {
		row := models.AggregateView{
			ID:           rec.ID,
			DonorID:      rec.DonorID,
			DonationDate: rec.DonationDate,
			DonationType: rec.DonationType,
			Status:       rec.Status,
			Remarks:      rec.Remarks,
		}
		if rec.DonatedUnits != nil {
			row.DonatedUnits = *rec.DonatedUnits
		}
		if user, ok := users[rec.DonorID]; ok {
			row.User = &models.AggregateUser{
				Name:       user.FullName,
				Username:   user.Username,
				Email:      user.Email,
				Phone:      user.Phone,
				BloodGroup: user.BloodGroup,
			}
		}
		if hospital, ok := hospitals[rec.HospitalID]; ok {
			row.Hospital = &models.AggregateHospital{
				Name:     hospital.Name,
				Address:  hospital.Address,
				Phone:    hospital.Phone,
				Location: hospital.Location,
			}
		}
		if request, ok := requests[rec.RequestID]; ok {
			row.Request = &models.AggregateRequest{
				PatientName:     request.PatientName,
				BloodGroup:      request.BloodGroup,
				BloodUnitsCount: request.BloodUnitsCount,
				Status:          request.Status,
				RequestDate:     request.RequestDate,
			}
		}
		if report, ok := reports[rec.ReportID]; ok {
			row.Report = &models.AggregateReport{
				Eligible:   report.Eligible,
				ReportDate: report.ReportDate,
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// summarize folds the joined rows into the summary block. Null units count as
// zero; byType and byStatus carry one entry per row, preserving row order.
func summarize(rows []models.AggregateView) models.AggregateSummary {
	summary := models.AggregateSummary{
		TotalDonations: len(rows),
		ByType:         make([]models.TypeUnits, 0, len(rows)),
		ByStatus:       make([]models.StatusEntry, 0, len(rows)),
	}
	for _, row := range rows {
		summary.TotalUnits += row.DonatedUnits
		summary.ByType = append(summary.ByType, models.TypeUnits{
			DonationType: row.DonationType,
			Units:        row.DonatedUnits,
		})
		summary.ByStatus = append(summary.ByStatus, models.StatusEntry{
			Status:     row.Status,
			DonationID: row.ID,
		})
	}
	return summary
}

// ListRequestsNearby returns requests ordered by hospital proximity to the
// origin. Requests at hospitals inside the radius come first, nearest first;
// the rest follow, each group newest first. When the filter selects COMPLETED
// requests the listing carries fulfilment statistics.
func (s *AggregateService) ListRequestsNearby(ctx context.Context, filter models.RequestFilter, lat, lng, radiusMeters float64) (*GeoRequestListing, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.geoRadius
	}

	nearby, err := s.requests.NearbyHospitals(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to search hospitals")
	}
	distances := make(map[string]float64, len(nearby))
	for _, h := range nearby {
		distances[h.HospitalID] = h.DistanceMeters
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list donation requests")
	}

	sort.SliceStable(requests, func(i, j int) bool {
		di, iNear := distances[requests[i].HospitalID]
		dj, jNear := distances[requests[j].HospitalID]
		if iNear != jNear {
			return iNear
		}
		if iNear && jNear && di != dj {
			return di < dj
		}
		return requests[i].RequestDate.After(requests[j].RequestDate)
	})

	listing := &GeoRequestListing{
		Requests:   requests,
		Pagination: models.NewPagination(filter.Page, filter.Size, total),
	}

	if filter.Status == models.RequestStatusCompleted {
		stats, err := s.completedStats(ctx, requests)
		if err != nil {
			return nil, err
		}
		listing.Stats = stats
	}
	return listing, nil
}

// completedStats folds fulfilment figures over the history records attached
// to the completed requests in view.
func (s *AggregateService) completedStats(ctx context.Context, requests []models.DonationRequest) (*models.CompletedRequestStats, error) {
	stats := &models.CompletedRequestStats{}
	if len(requests) == 0 {
		return stats, nil
	}

	requestIDs := make([]string, 0, len(requests))
	hospitalSet := make(map[string]struct{})
	for _, request := range requests {
		requestIDs = append(requestIDs, request.ID)
		if request.HospitalID != "" {
			hospitalSet[request.HospitalID] = struct{}{}
		}
	}
	stats.UniqueHospitals = len(hospitalSet)

	records, err := s.donations.ListByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load fulfilment history")
	}

	reportIDs := make(map[string]struct{})
	for _, rec := range records {
		stats.TotalDonations++
		if rec.DonatedUnits != nil {
			stats.TotalUnits += *rec.DonatedUnits
		}
		if models.EntityRef(rec.ReportID).Valid() {
			reportIDs[rec.ReportID] = struct{}{}
		}
	}

	reports, err := s.reports.FindByIDs(ctx, keys(reportIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve reports")
	}
	for _, report := range reports {
		if report.Eligible {
			stats.EligibleReports++
		}
	}
	return stats, nil
}

// aggregateCachePattern matches every cached aggregate view. Write paths
// invalidate on it so mutations are visible before the TTL runs out.
const aggregateCachePattern = "aggregate:history:*"

func aggregateCacheKey(filter models.DonationFilter) string {
	from, to := "", ""
	if filter.DateFrom != nil {
		from = filter.DateFrom.UTC().Format(time.RFC3339)
	}
	if filter.DateTo != nil {
		to = filter.DateTo.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("aggregate:history:%s:%s:%s:%s:%s:%s:%s:%s:%d:%d",
		filter.DonorID, filter.HospitalID, filter.RequestID, filter.ReportID,
		filter.Status, filter.DonationType, from, to, filter.Page, filter.Size)
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
