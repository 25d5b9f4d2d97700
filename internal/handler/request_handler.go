package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/internal/service"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
	"github.com/lifelink-dev/bloodlink-api/pkg/response"
)

type requestService interface {
	Create(ctx context.Context, payload dto.CreateRequestPayload) (*models.DonationRequest, error)
	Get(ctx context.Context, id string) (*models.DonationRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.DonationRequest, *models.Pagination, error)
	Update(ctx context.Context, id string, patch dto.UpdateRequestPatch) (*models.DonationRequest, error)
	Volunteer(ctx context.Context, requestID string, payload dto.VolunteerPayload) (*models.DonationRequest, error)
	Delete(ctx context.Context, id string) error
}

type geoRequestService interface {
	ListRequestsNearby(ctx context.Context, filter models.RequestFilter, lat, lng, radiusMeters float64) (*service.GeoRequestListing, error)
}

// RequestHandler exposes the donation request lifecycle endpoints.
type RequestHandler struct {
	service requestService
	geo     geoRequestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService, geo geoRequestService) *RequestHandler {
	return &RequestHandler{service: service, geo: geo}
}

// Create godoc
// @Summary Open a donation request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var payload dto.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	request, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil)
}

// List godoc
// @Summary List donation requests
// @Tags Requests
// @Produce json
// @Param status query string false "Lifecycle status"
// @Param hospitalId query string false "Hospital id"
// @Param bloodGroup query string false "Blood group"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	filter := models.RequestFilter{
		HospitalID: c.Query("hospitalId"),
		BloodGroup: c.Query("bloodGroup"),
		Priority:   c.Query("priority"),
		Page:       queryInt(c, "page", 1),
		Size:       queryInt(c, "size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status, known := models.ParseRequestStatus(raw)
		if !known {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown request status: "+raw))
			return
		}
		filter.Status = status
	}
	requests, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Nearby godoc
// @Summary List requests ordered by hospital proximity
// @Tags Requests
// @Produce json
// @Param lat query number true "Origin latitude"
// @Param lng query number true "Origin longitude"
// @Param radius query number false "Search radius in meters"
// @Param status query string false "Lifecycle status"
// @Success 200 {object} response.Envelope
// @Router /requests/nearby [get]
func (h *RequestHandler) Nearby(c *gin.Context) {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "lat and lng are required"))
		return
	}
	filter := models.RequestFilter{
		BloodGroup: c.Query("bloodGroup"),
		Priority:   c.Query("priority"),
		Page:       queryInt(c, "page", 1),
		Size:       queryInt(c, "size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status, known := models.ParseRequestStatus(raw)
		if !known {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown request status: "+raw))
			return
		}
		filter.Status = status
	}
	listing, err := h.geo.ListRequestsNearby(c.Request.Context(), filter,
		queryFloat(c, "lat", 0), queryFloat(c, "lng", 0), queryFloat(c, "radius", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{}
	if listing.Stats != nil {
		meta["completedStats"] = listing.Stats
	}
	response.JSON(c, http.StatusOK, listing.Requests, listing.Pagination, meta)
}

// Get godoc
// @Summary Get one donation request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Update godoc
// @Summary Update a donation request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateRequestPatch true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [patch]
func (h *RequestHandler) Update(c *gin.Context) {
	var patch dto.UpdateRequestPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid patch payload"))
		return
	}
	request, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Volunteer godoc
// @Summary Volunteer for a donation request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.VolunteerPayload true "Volunteer payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/volunteer [post]
func (h *RequestHandler) Volunteer(c *gin.Context) {
	var payload dto.VolunteerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid volunteer payload"))
		return
	}
	if payload.DonorID == "" {
		if claims := claimsFromContext(c); claims != nil {
			payload.DonorID = claims.UserID
		}
	}
	request, err := h.service.Volunteer(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Delete godoc
// @Summary Delete a donation request
// @Tags Requests
// @Param id path string true "Request ID"
// @Success 204
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
