package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
	appErrors "github.com/lifelink-dev/bloodlink-api/pkg/errors"
	"github.com/lifelink-dev/bloodlink-api/pkg/export"
	"github.com/lifelink-dev/bloodlink-api/pkg/storage"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type aggregateProvider interface {
	AggregateHistory(ctx context.Context, filter models.DonationFilter) (*AggregatedHistory, error)
}

type exportFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string       `json:"path"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders donation history reports and persists them with
// signed download links.
type ExportService struct {
	aggregates aggregateProvider
	storage    exportFileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(aggregates aggregateProvider, files exportFileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		aggregates: aggregates,
		storage:    files,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate renders the filtered donation history in the requested format,
// stores the file, and returns a signed download link.
func (s *ExportService) Generate(ctx context.Context, filter models.DonationFilter, format ExportFormat) (*ExportResult, error) {
	aggregated, err := s.aggregates.AggregateHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset, title := buildHistoryDataset(aggregated)

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+string(format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("donation_history_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and returns a handle to the stored file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, nil
}

// Cleanup removes stored exports older than ttl (defaults to ResultTTL).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildHistoryDataset(aggregated *AggregatedHistory) (export.Dataset, string) {
	headers := []string{"Donation ID", "Donor", "Hospital", "Date", "Type", "Units", "Status"}
	rows := make([]map[string]string, 0, len(aggregated.Rows))
	for _, row := range aggregated.Rows {
		donor := row.DonorID
		if row.User != nil && row.User.Name != "" {
			donor = row.User.Name
		}
		hospital := ""
		if row.Hospital != nil {
			hospital = row.Hospital.Name
		}
		date := ""
		if row.DonationDate != nil {
			date = row.DonationDate.UTC().Format("2006-01-02")
		}
		rows = append(rows, map[string]string{
			"Donation ID": row.ID,
			"Donor":       donor,
			"Hospital":    hospital,
			"Date":        date,
			"Type":        row.DonationType,
			"Units":       fmt.Sprintf("%d", row.DonatedUnits),
			"Status":      row.Status,
		})
	}
	title := fmt.Sprintf("Donation History (%d donations, %d units)",
		aggregated.Summary.TotalDonations, aggregated.Summary.TotalUnits)
	return export.Dataset{Headers: headers, Rows: rows}, title
}
