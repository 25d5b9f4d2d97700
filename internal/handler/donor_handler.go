package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/internal/service"
	"github.com/lifelink-dev/bloodlink-api/pkg/response"
)

type donorService interface {
	List(ctx context.Context, filter models.UserFilter, onlyEligible bool) ([]service.DonorView, *models.Pagination, error)
}

// DonorHandler exposes the public donor listing.
type DonorHandler struct {
	service donorService
}

// NewDonorHandler constructs the handler.
func NewDonorHandler(service donorService) *DonorHandler {
	return &DonorHandler{service: service}
}

// List godoc
// @Summary List donors with eligibility annotations
// @Tags Donors
// @Produce json
// @Param bloodGroup query string false "Blood group"
// @Param onlyEligible query bool false "Filter to currently eligible donors"
// @Success 200 {object} response.Envelope
// @Router /donors [get]
func (h *DonorHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		BloodGroup: c.Query("bloodGroup"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page", 1),
		Size:       queryInt(c, "size", 20),
	}
	onlyEligible := c.Query("onlyEligible") == "true"

	donors, pagination, err := h.service.List(c.Request.Context(), filter, onlyEligible)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donors, pagination)
}
