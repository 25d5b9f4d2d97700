package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/internal/service"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
)

type fakeRequestSrv struct {
	created    *models.DonationRequest
	createErr  error
	getErr     error
	updated    *models.DonationRequest
	updateErr  error
	lastFilter models.RequestFilter
}

func (f *fakeRequestSrv) Create(_ context.Context, _ dto.CreateRequestPayload) (*models.DonationRequest, error) {
	return f.created, f.createErr
}

func (f *fakeRequestSrv) Get(_ context.Context, _ string) (*models.DonationRequest, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.created, nil
}

func (f *fakeRequestSrv) List(_ context.Context, filter models.RequestFilter) ([]models.DonationRequest, *models.Pagination, error) {
	f.lastFilter = filter
	return nil, models.NewPagination(filter.Page, filter.Size, 0), nil
}

func (f *fakeRequestSrv) Update(_ context.Context, _ string, _ dto.UpdateRequestPatch) (*models.DonationRequest, error) {
	return f.updated, f.updateErr
}

func (f *fakeRequestSrv) Volunteer(_ context.Context, _ string, _ dto.VolunteerPayload) (*models.DonationRequest, error) {
	return f.created, nil
}

func (f *fakeRequestSrv) Delete(_ context.Context, _ string) error { return nil }

type fakeGeoSrv struct {
	listing *service.GeoRequestListing
}

func (f *fakeGeoSrv) ListRequestsNearby(_ context.Context, _ models.RequestFilter, _, _, _ float64) (*service.GeoRequestListing, error) {
	return f.listing, nil
}

func TestRequestHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRequestSrv{created: &models.DonationRequest{ID: "req-1", Status: models.RequestStatusPending}}
	handler := NewRequestHandler(srv, &fakeGeoSrv{})

	body, _ := json.Marshal(dto.CreateRequestPayload{
		HospitalID: "hosp-1", BloodGroup: "O+", BloodUnitsCount: 2, Priority: "HIGH",
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body))

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequestHandlerListRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(&fakeRequestSrv{}, &fakeGeoSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests?status=FULFILLED", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestHandlerListNormalizesStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRequestSrv{}
	handler := NewRequestHandler(srv, &fakeGeoSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests?status=pending", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RequestStatusPending, srv.lastFilter.Status)
}

func TestRequestHandlerUpdateMapsTransitionError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRequestSrv{updateErr: appErrors.ErrInvalidTransition}
	handler := NewRequestHandler(srv, &fakeGeoSrv{})

	body := []byte(`{"status":"CLOSED"}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/requests/req-1", bytes.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	handler.Update(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRequestSrv{getErr: appErrors.ErrNotFound}
	handler := NewRequestHandler(srv, &fakeGeoSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestHandlerNearbyRequiresOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(&fakeRequestSrv{}, &fakeGeoSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests/nearby", nil)

	handler.Nearby(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestHandlerNearbyIncludesStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	geo := &fakeGeoSrv{listing: &service.GeoRequestListing{
		Requests:   []models.DonationRequest{{ID: "req-1"}},
		Stats:      &models.CompletedRequestStats{TotalDonations: 4},
		Pagination: models.NewPagination(1, 20, 1),
	}}
	handler := NewRequestHandler(&fakeRequestSrv{}, geo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests/nearby?lat=12.9&lng=77.6&status=COMPLETED", nil)

	handler.Nearby(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Meta map[string]json.RawMessage `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Meta, "completedStats")
}
