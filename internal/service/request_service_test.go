package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type requestRepoStub struct {
	byID      map[string]*models.DonationRequest
	created   []*models.DonationRequest
	updated   []*models.DonationRequest
	guardFail bool
}

func newRequestRepoStub() *requestRepoStub {
	return &requestRepoStub{byID: map[string]*models.DonationRequest{}}
}

func (s *requestRepoStub) Create(_ context.Context, request *models.DonationRequest) error {
	if request.ID == "" {
		request.ID = "req-1"
	}
	clone := *request
	s.byID[request.ID] = &clone
	s.created = append(s.created, request)
	return nil
}

func (s *requestRepoStub) FindByID(_ context.Context, id string) (*models.DonationRequest, error) {
	request, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *request
	return &clone, nil
}

func (s *requestRepoStub) List(_ context.Context, _ models.RequestFilter) ([]models.DonationRequest, int, error) {
	var out []models.DonationRequest
	for _, request := range s.byID {
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (s *requestRepoStub) UpdateWithStatusGuard(_ context.Context, request *models.DonationRequest, prev models.RequestStatus) error {
	if s.guardFail {
		return sql.ErrNoRows
	}
	stored, ok := s.byID[request.ID]
	if !ok || stored.Status != prev {
		return sql.ErrNoRows
	}
	clone := *request
	s.byID[request.ID] = &clone
	s.updated = append(s.updated, request)
	return nil
}

func (s *requestRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	return nil
}

type hospitalReaderStub struct {
	hospitals map[string]*models.Hospital
}

func (s *hospitalReaderStub) FindByID(_ context.Context, id string) (*models.Hospital, error) {
	hospital, ok := s.hospitals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return hospital, nil
}

// cacheRecorderStub records invalidation patterns for assertion.
type cacheRecorderStub struct {
	invalidated []string
}

func (s *cacheRecorderStub) Get(_ context.Context, _ string, _ interface{}) error {
	return appErrors.ErrCacheMiss
}

func (s *cacheRecorderStub) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}

func (s *cacheRecorderStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	return nil
}

func newTestRequestService(repo *requestRepoStub) *RequestService {
	hospitals := &hospitalReaderStub{hospitals: map[string]*models.Hospital{
		"hosp-1": {ID: "hosp-1", Name: "City General", Address: "1 Main St", Phone: "555-0100", Location: "Downtown"},
	}}
	svc := NewRequestService(repo, hospitals, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func seedRequest(repo *requestRepoStub, status models.RequestStatus, approved bool) *models.DonationRequest {
	request := &models.DonationRequest{
		ID:              "req-1",
		HospitalID:      "hosp-1",
		HospitalName:    "City General",
		BloodGroup:      "O+",
		BloodUnitsCount: 2,
		Priority:        "HIGH",
		RequestDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:          status,
		Approved:        approved,
		Volunteers:      models.VolunteerList{},
	}
	repo.byID[request.ID] = request
	return request
}

func TestRequestServiceCreateDefaultsToPending(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)

	request, err := svc.Create(context.Background(), dto.CreateRequestPayload{
		HospitalID:      "hosp-1",
		BloodGroup:      "A-",
		BloodUnitsCount: 3,
		Priority:        "NORMAL",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.False(t, request.Approved)
	assert.Equal(t, 0, request.AvailableDonors)
	assert.NotNil(t, request.Volunteers)
	assert.Equal(t, "City General", request.HospitalName)
}

func TestRequestServiceCreateNormalizesStatusCase(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)

	request, err := svc.Create(context.Background(), dto.CreateRequestPayload{
		HospitalID:      "hosp-1",
		BloodGroup:      "B+",
		BloodUnitsCount: 1,
		Priority:        "HIGH",
		Status:          "approved",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, request.Status)
	assert.True(t, request.Approved)
}

func TestRequestServiceCreateRejectsUnknownStatus(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)

	_, err := svc.Create(context.Background(), dto.CreateRequestPayload{
		HospitalID:      "hosp-1",
		BloodGroup:      "B+",
		BloodUnitsCount: 1,
		Priority:        "HIGH",
		Status:          "FULFILLED",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestRequestServiceUpdateBlocksUnapprovedClosure(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusPending, false)

	for _, target := range []string{"CLOSED", "COMPLETED"} {
		status := target
		_, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{Status: &status})
		require.Error(t, err, target)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}

	stored := repo.byID["req-1"]
	assert.Equal(t, models.RequestStatusPending, stored.Status)
	assert.Nil(t, stored.ClosedAt)
}

func TestRequestServiceUpdateBlocksLeavingTerminalStates(t *testing.T) {
	for _, prev := range []models.RequestStatus{
		models.RequestStatusClosed,
		models.RequestStatusCompleted,
		models.RequestStatusRejected,
	} {
		repo := newRequestRepoStub()
		svc := newTestRequestService(repo)
		seedRequest(repo, prev, true)

		status := "pending"
		_, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{Status: &status})
		require.Error(t, err, prev)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
		assert.Equal(t, prev, repo.byID["req-1"].Status, "terminal status must stay put")
	}
}

func TestRequestServiceUpdateAllowsNonStatusEditsOnTerminal(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusClosed, true)

	patient := "Patient Z"
	request, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{PatientName: &patient})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusClosed, request.Status)
	assert.Equal(t, patient, request.PatientName)
}

func TestRequestServiceMutationsInvalidateAggregates(t *testing.T) {
	repo := newRequestRepoStub()
	recorder := &cacheRecorderStub{}
	hospitals := &hospitalReaderStub{hospitals: map[string]*models.Hospital{
		"hosp-1": {ID: "hosp-1", Name: "City General"},
	}}
	svc := NewRequestService(repo, hospitals, NewCacheService(recorder, nil, time.Minute, nil, true), nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateRequestPayload{
		HospitalID:      "hosp-1",
		BloodGroup:      "O+",
		BloodUnitsCount: 1,
		Priority:        "HIGH",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), "req-1"))

	assert.Equal(t, []string{"aggregate:history:*", "aggregate:history:*"}, recorder.invalidated)
}

func TestRequestServiceUpdateClosesApprovedRequest(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusApproved, true)

	status := "closed"
	reason := "need met elsewhere"
	request, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{
		Status:       &status,
		ClosedReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusClosed, request.Status)
	require.NotNil(t, request.ClosedAt)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), *request.ClosedAt)
	require.NotNil(t, request.ClosedReason)
	assert.Equal(t, reason, *request.ClosedReason)
}

func TestRequestServiceApprovedSurvivesRejection(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusApproved, true)

	status := "REJECTED"
	request, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, request.Status)
	assert.True(t, request.Approved, "approval flag must not be cleared by later transitions")
}

func TestRequestServiceLowercaseApprovePatch(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusPending, false)

	status := "approved"
	request, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, request.Status)
	assert.True(t, request.Approved)
}

func TestRequestServiceUpdateCompletedStampsFulfilment(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusInProgress, true)

	status := "COMPLETED"
	donor := "donor-9"
	request, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{
		Status:      &status,
		FulfilledBy: &donor,
	})
	require.NoError(t, err)
	require.NotNil(t, request.FulfilledBy)
	assert.Equal(t, donor, *request.FulfilledBy)
	require.NotNil(t, request.FulfilledAt)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), *request.FulfilledAt)
}

func TestRequestServiceUpdateConcurrentConflict(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusApproved, true)
	repo.guardFail = true

	status := "CLOSED"
	_, err := svc.Update(context.Background(), "req-1", dto.UpdateRequestPatch{Status: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRequestServiceVolunteerTwiceAccumulates(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusApproved, true)

	_, err := svc.Volunteer(context.Background(), "req-1", dto.VolunteerPayload{
		DonorID: "donor-1", DonorName: "Asha", Contact: "555-0101",
	})
	require.NoError(t, err)

	request, err := svc.Volunteer(context.Background(), "req-1", dto.VolunteerPayload{
		DonorID: "donor-2", DonorName: "Ravi", Contact: "555-0102",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, request.AvailableDonors)
	assert.Len(t, request.Volunteers, 2)
	assert.Equal(t, models.RequestStatusInProgress, request.Status)
	assert.Equal(t, "donor-1", request.Volunteers[0].DonorID)
	assert.Equal(t, "donor-2", request.Volunteers[1].DonorID)
}

func TestRequestServiceVolunteerRequiresApproval(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)
	seedRequest(repo, models.RequestStatusPending, false)

	_, err := svc.Volunteer(context.Background(), "req-1", dto.VolunteerPayload{
		DonorName: "Asha", Contact: "555-0101",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestRequestServiceVolunteerBlockedOnTerminal(t *testing.T) {
	for _, status := range []models.RequestStatus{
		models.RequestStatusRejected,
		models.RequestStatusClosed,
		models.RequestStatusCompleted,
	} {
		repo := newRequestRepoStub()
		svc := newTestRequestService(repo)
		seedRequest(repo, status, true)

		_, err := svc.Volunteer(context.Background(), "req-1", dto.VolunteerPayload{
			DonorName: "Asha", Contact: "555-0101",
		})
		require.Error(t, err, string(status))
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}

func TestRequestServiceGetNotFound(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newTestRequestService(repo)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
