package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

type historyListerStub struct {
	records   []models.DonationHistoryRecord
	byRequest []models.DonationHistoryRecord
}

func (s *historyListerStub) List(_ context.Context, _ models.DonationFilter) ([]models.DonationHistoryRecord, int, error) {
	return s.records, len(s.records), nil
}

func (s *historyListerStub) ListByRequestIDs(_ context.Context, _ []string) ([]models.DonationHistoryRecord, error) {
	return s.byRequest, nil
}

type userBulkStub struct{ users map[string]models.User }

func (s *userBulkStub) FindByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	out := map[string]models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type hospitalBulkStub struct{ hospitals map[string]models.Hospital }

func (s *hospitalBulkStub) FindByIDs(_ context.Context, ids []string) (map[string]models.Hospital, error) {
	out := map[string]models.Hospital{}
	for _, id := range ids {
		if h, ok := s.hospitals[id]; ok {
			out[id] = h
		}
	}
	return out, nil
}

type requestBulkStub struct {
	requests map[string]models.DonationRequest
	listed   []models.DonationRequest
	nearby   []models.NearbyHospital

	lookedUp []string
}

func (s *requestBulkStub) FindByIDs(_ context.Context, ids []string) (map[string]models.DonationRequest, error) {
	s.lookedUp = append(s.lookedUp, ids...)
	out := map[string]models.DonationRequest{}
	for _, id := range ids {
		if r, ok := s.requests[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (s *requestBulkStub) List(_ context.Context, _ models.RequestFilter) ([]models.DonationRequest, int, error) {
	return s.listed, len(s.listed), nil
}

func (s *requestBulkStub) NearbyHospitals(_ context.Context, _, _, _ float64) ([]models.NearbyHospital, error) {
	return s.nearby, nil
}

type reportBulkStub struct {
	reports  map[string]models.MedicalReport
	lookedUp []string
}

func (s *reportBulkStub) FindByIDs(_ context.Context, ids []string) (map[string]models.MedicalReport, error) {
	s.lookedUp = append(s.lookedUp, ids...)
	out := map[string]models.MedicalReport{}
	for _, id := range ids {
		if r, ok := s.reports[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func ptrInt(v int) *int { return &v }

func ptrTime(v time.Time) *time.Time { return &v }

const (
	validRef = "5f8d0d55b54764421b715f1a"
	// repository-minted id shape
	nativeRef       = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	nativeReportRef = "550e8400-e29b-41d4-a716-446655440000"
)

func TestAggregateHistoryJoinsAndMalformedRefs(t *testing.T) {
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	donations := &historyListerStub{records: []models.DonationHistoryRecord{
		{
			ID: "don-1", DonorID: "user-1", HospitalID: "hosp-1",
			RequestID: validRef, ReportID: "not-an-id",
			DonationDate: ptrTime(date), DonatedUnits: ptrInt(2),
			DonationType: "Whole Blood", Status: models.DonationStatusSuccess,
		},
		{
			ID: "don-2", DonorID: "ghost", RequestID: "walk-in",
			DonationType: "Plasma", Status: models.DonationStatusFailed,
		},
	}}
	users := &userBulkStub{users: map[string]models.User{
		"user-1": {ID: "user-1", FullName: "Asha Rao", Username: "asha", Email: "asha@example.com", BloodGroup: "O+"},
	}}
	hospitals := &hospitalBulkStub{hospitals: map[string]models.Hospital{
		"hosp-1": {ID: "hosp-1", Name: "City General"},
	}}
	requests := &requestBulkStub{requests: map[string]models.DonationRequest{
		validRef: {ID: validRef, PatientName: "Patient X", BloodGroup: "O+", BloodUnitsCount: 2, Status: models.RequestStatusCompleted},
	}}
	reports := &reportBulkStub{reports: map[string]models.MedicalReport{}}

	svc := NewAggregateService(donations, users, hospitals, requests, reports, nil, 0, 0, nil)

	result, err := svc.AggregateHistory(context.Background(), models.DonationFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2, "rows with malformed references are kept")

	first := result.Rows[0]
	require.NotNil(t, first.User)
	assert.Equal(t, "Asha Rao", first.User.Name)
	require.NotNil(t, first.Hospital)
	assert.Equal(t, "City General", first.Hospital.Name)
	require.NotNil(t, first.Request)
	assert.Equal(t, "Patient X", first.Request.PatientName)
	assert.Nil(t, first.Report, "malformed report ref yields nil sub-object")

	second := result.Rows[1]
	assert.Nil(t, second.User)
	assert.Nil(t, second.Hospital)
	assert.Nil(t, second.Request, "malformed request ref is never joined")

	// malformed references never reach the lookup layer
	assert.NotContains(t, requests.lookedUp, "walk-in")
	assert.NotContains(t, reports.lookedUp, "not-an-id")
}

func TestAggregateHistoryJoinsUUIDRefs(t *testing.T) {
	donations := &historyListerStub{records: []models.DonationHistoryRecord{
		{
			ID: "don-1", DonorID: "user-1",
			RequestID: nativeRef, ReportID: nativeReportRef,
			Status: models.DonationStatusSuccess,
		},
	}}
	requests := &requestBulkStub{requests: map[string]models.DonationRequest{
		nativeRef: {ID: nativeRef, PatientName: "Patient Y", Status: models.RequestStatusInProgress},
	}}
	reports := &reportBulkStub{reports: map[string]models.MedicalReport{
		nativeReportRef: {ID: nativeReportRef, Eligible: true},
	}}
	svc := NewAggregateService(donations, &userBulkStub{}, &hospitalBulkStub{}, requests, reports, nil, 0, 0, nil)

	result, err := svc.AggregateHistory(context.Background(), models.DonationFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	require.NotNil(t, row.Request, "uuid request refs join like legacy hex refs")
	assert.Equal(t, "Patient Y", row.Request.PatientName)
	require.NotNil(t, row.Report)
	assert.True(t, row.Report.Eligible)
	assert.Contains(t, requests.lookedUp, nativeRef)
	assert.Contains(t, reports.lookedUp, nativeReportRef)
}

func TestAggregateHistorySummaryMatchesRows(t *testing.T) {
	donations := &historyListerStub{records: []models.DonationHistoryRecord{
		{ID: "don-1", DonorID: "u1", DonatedUnits: ptrInt(2), DonationType: "Whole Blood", Status: "Success"},
		{ID: "don-2", DonorID: "u2", DonationType: "Plasma", Status: "Failed"},
		{ID: "don-3", DonorID: "u3", DonatedUnits: ptrInt(3), DonationType: "Platelets", Status: "Success"},
	}}
	svc := NewAggregateService(donations, &userBulkStub{}, &hospitalBulkStub{}, &requestBulkStub{}, &reportBulkStub{}, nil, 0, 0, nil)

	result, err := svc.AggregateHistory(context.Background(), models.DonationFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.TotalDonations)
	assert.Equal(t, 5, result.Summary.TotalUnits, "null units count as zero")
	require.Len(t, result.Summary.ByType, 3)
	assert.Equal(t, models.TypeUnits{DonationType: "Plasma", Units: 0}, result.Summary.ByType[1])
	require.Len(t, result.Summary.ByStatus, 3)
	assert.Equal(t, models.StatusEntry{Status: "Failed", DonationID: "don-2"}, result.Summary.ByStatus[1])
}

func TestListRequestsNearbyOrdersByProximity(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	requests := &requestBulkStub{
		nearby: []models.NearbyHospital{
			{HospitalID: "hosp-near", DistanceMeters: 800},
			{HospitalID: "hosp-nearer", DistanceMeters: 200},
		},
		listed: []models.DonationRequest{
			{ID: "r-far-new", HospitalID: "hosp-far", RequestDate: day(9)},
			{ID: "r-near", HospitalID: "hosp-near", RequestDate: day(1)},
			{ID: "r-far-old", HospitalID: "hosp-far", RequestDate: day(2)},
			{ID: "r-nearer", HospitalID: "hosp-nearer", RequestDate: day(5)},
		},
	}
	svc := NewAggregateService(&historyListerStub{}, &userBulkStub{}, &hospitalBulkStub{}, requests, &reportBulkStub{}, nil, 0, 5000, nil)

	listing, err := svc.ListRequestsNearby(context.Background(), models.RequestFilter{}, 12.9, 77.6, 0)
	require.NoError(t, err)

	ids := make([]string, 0, len(listing.Requests))
	for _, r := range listing.Requests {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r-nearer", "r-near", "r-far-new", "r-far-old"}, ids)
	assert.Nil(t, listing.Stats)
}

func TestListRequestsNearbyCompletedStats(t *testing.T) {
	requests := &requestBulkStub{
		listed: []models.DonationRequest{
			{ID: "req-1", HospitalID: "hosp-1", Status: models.RequestStatusCompleted, RequestDate: time.Now()},
			{ID: "req-2", HospitalID: "hosp-1", Status: models.RequestStatusCompleted, RequestDate: time.Now()},
		},
	}
	donations := &historyListerStub{byRequest: []models.DonationHistoryRecord{
		{ID: "don-1", RequestID: "req-1", DonatedUnits: ptrInt(2), ReportID: validRef},
		{ID: "don-2", RequestID: "req-2", DonatedUnits: ptrInt(1), ReportID: "free text"},
	}}
	reports := &reportBulkStub{reports: map[string]models.MedicalReport{
		validRef: {ID: validRef, Eligible: true},
	}}
	svc := NewAggregateService(donations, &userBulkStub{}, &hospitalBulkStub{}, requests, reports, nil, 0, 5000, nil)

	listing, err := svc.ListRequestsNearby(context.Background(), models.RequestFilter{Status: models.RequestStatusCompleted}, 12.9, 77.6, 1000)
	require.NoError(t, err)

	require.NotNil(t, listing.Stats)
	assert.Equal(t, 2, listing.Stats.TotalDonations)
	assert.Equal(t, 3, listing.Stats.TotalUnits)
	assert.Equal(t, 1, listing.Stats.UniqueHospitals)
	assert.Equal(t, 1, listing.Stats.EligibleReports)
}
