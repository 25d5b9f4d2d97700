package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifelink-dev/bloodlink-api/internal/dto"
	"github.com/lifelink-dev/bloodlink-api/internal/eligibility"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/internal/service"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
	"github.com/lifelink-dev/bloodlink-api/pkg/response"
)

type donationService interface {
	Create(ctx context.Context, payload dto.CreateDonationPayload) (*models.DonationHistoryRecord, error)
	Get(ctx context.Context, id string) (*models.DonationHistoryRecord, error)
	List(ctx context.Context, filter models.DonationFilter) ([]models.DonationHistoryRecord, *models.Pagination, error)
	Update(ctx context.Context, id string, patch dto.UpdateDonationPatch) (*models.DonationHistoryRecord, error)
	Delete(ctx context.Context, id string) error
	Eligibility(ctx context.Context, donorID string) (*eligibility.Result, error)
}

type aggregateService interface {
	AggregateHistory(ctx context.Context, filter models.DonationFilter) (*service.AggregatedHistory, error)
}

// DonationHandler exposes the donation history ledger and its reporting view.
type DonationHandler struct {
	service    donationService
	aggregates aggregateService
}

// NewDonationHandler constructs the handler.
func NewDonationHandler(service donationService, aggregates aggregateService) *DonationHandler {
	return &DonationHandler{service: service, aggregates: aggregates}
}

func donationFilterFromQuery(c *gin.Context) models.DonationFilter {
	return models.DonationFilter{
		DonorID:      c.Query("donorId"),
		HospitalID:   c.Query("hospitalId"),
		RequestID:    c.Query("requestId"),
		ReportID:     c.Query("reportId"),
		Status:       c.Query("status"),
		DonationType: c.Query("donationType"),
		DateFrom:     queryDate(c, "dateFrom"),
		DateTo:       queryDateEnd(c, "dateTo"),
		Page:         queryInt(c, "page", 1),
		Size:         queryInt(c, "size", 50),
	}
}

// Create godoc
// @Summary Record a donation event
// @Tags Donations
// @Accept json
// @Produce json
// @Param payload body dto.CreateDonationPayload true "Donation payload"
// @Success 201 {object} response.Envelope
// @Router /donations [post]
func (h *DonationHandler) Create(c *gin.Context) {
	var payload dto.CreateDonationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid donation payload"))
		return
	}
	record, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, record, nil)
}

// List godoc
// @Summary List donation history
// @Tags Donations
// @Produce json
// @Param donorId query string false "Donor id"
// @Param dateFrom query string false "Inclusive lower bound"
// @Param dateTo query string false "Inclusive upper bound"
// @Success 200 {object} response.Envelope
// @Router /donations [get]
func (h *DonationHandler) List(c *gin.Context) {
	records, pagination, err := h.service.List(c.Request.Context(), donationFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Aggregate godoc
// @Summary Aggregated donation history with joined relations
// @Tags Donations
// @Produce json
// @Param donorId query string false "Donor id"
// @Param status query string false "Donation status"
// @Success 200 {object} response.Envelope
// @Router /donations/aggregate [get]
func (h *DonationHandler) Aggregate(c *gin.Context) {
	result, err := h.aggregates.AggregateHistory(c.Request.Context(), donationFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Rows, result.Pagination, map[string]interface{}{
		"summary": result.Summary,
	})
}

// Get godoc
// @Summary Get one donation record
// @Tags Donations
// @Produce json
// @Param id path string true "Donation ID"
// @Success 200 {object} response.Envelope
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Update godoc
// @Summary Correct a donation record
// @Tags Donations
// @Accept json
// @Produce json
// @Param id path string true "Donation ID"
// @Param payload body dto.UpdateDonationPatch true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /donations/{id} [patch]
func (h *DonationHandler) Update(c *gin.Context) {
	var patch dto.UpdateDonationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid patch payload"))
		return
	}
	record, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a donation record
// @Tags Donations
// @Param id path string true "Donation ID"
// @Success 204
// @Router /donations/{id} [delete]
func (h *DonationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Eligibility godoc
// @Summary Compute a donor's current eligibility
// @Tags Donations
// @Produce json
// @Param donorId path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /donors/{donorId}/eligibility [get]
func (h *DonationHandler) Eligibility(c *gin.Context) {
	result, err := h.service.Eligibility(c.Request.Context(), c.Param("donorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
