package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/internal/service"
	"github.com/lifelink-dev/bloodlink-api/pkg/response"
)

type exportService interface {
	Generate(ctx context.Context, filter models.DonationFilter, format service.ExportFormat) (*service.ExportResult, error)
	Open(token string) (*os.File, error)
}

// ExportHandler renders donation history reports and serves signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Generate godoc
// @Summary Render a donation history export
// @Tags Exports
// @Produce json
// @Param format query string true "csv or pdf"
// @Param donorId query string false "Donor id"
// @Success 200 {object} response.Envelope
// @Router /donations/export [get]
func (h *ExportHandler) Generate(c *gin.Context) {
	format := service.ExportFormat(c.Query("format"))
	if format == "" {
		format = service.ExportFormatCSV
	}
	result, err := h.service.Generate(c.Request.Context(), donationFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a rendered export via its signed token
// @Tags Exports
// @Param token path string true "Signed download token"
// @Success 200
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	name := filepath.Base(file.Name())
	contentType := "application/octet-stream"
	switch filepath.Ext(name) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
