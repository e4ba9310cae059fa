package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/olympiad-applications/internal/models"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
	"github.com/noah-isme/olympiad-applications/pkg/export"
)

// ExportFormat enumerates supported download formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type applicationLister interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the filtered application list to CSV or PDF.
type ExportService struct {
	applications applicationLister
	csv          csvRenderer
	pdf          pdfRenderer
	metrics      *MetricsService
	logger       *zap.Logger
	title        string
	now          func() time.Time
}

// NewExportService wires the export renderers.
func NewExportService(applications applicationLister, csv csvRenderer, pdf pdfRenderer, metrics *MetricsService, logger *zap.Logger, title string) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Olympiad applications"
	}
	return &ExportService{applications: applications, csv: csv, pdf: pdf, metrics: metrics, logger: logger, title: title, now: time.Now}
}

var applicationExportColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 0.6},
	{Key: "studentName", Header: "Student", Width: 2.4},
	{Key: "ci", Header: "CI", Width: 1.1},
	{Key: "area", Header: "Area", Width: 1.3},
	{Key: "category", Header: "Category", Width: 1.6},
	{Key: "school", Header: "School", Width: 2.2},
	{Key: "status", Header: "Status", Width: 0.9},
	{Key: "registrationDate", Header: "Registered", Width: 1},
	{Key: "contactEmail", Header: "Email", Width: 2},
	{Key: "contactPhone", Header: "Phone", Width: 1.2},
	{Key: "notes", Header: "Notes", Width: 2},
}

// ApplicationDataset converts applications into an export dataset.
func ApplicationDataset(apps []models.Application) export.Dataset {
	rows := make([]map[string]string, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, map[string]string{
			"id":               strconv.FormatInt(app.ID, 10),
			"studentName":      app.StudentName,
			"ci":               app.CI,
			"area":             app.Area,
			"category":         app.Category,
			"school":           app.School,
			"status":           app.Status.Label(),
			"registrationDate": app.RegistrationDate,
			"contactEmail":     app.ContactEmail,
			"contactPhone":     app.ContactPhone,
			"notes":            app.NotesText(),
		})
	}
	return export.Dataset{Columns: applicationExportColumns, Rows: rows}
}

// ParseExportFormat accepts csv (default) or pdf.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

// Export renders the applications visible under filter.
func (s *ExportService) Export(ctx context.Context, filter models.ApplicationFilter, format ExportFormat) (*ExportFile, error) {
	apps, _, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := ApplicationDataset(apps)
	stamp := s.now().UTC().Format("20060102-150405")

	var file ExportFile
	switch format {
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		file = ExportFile{Filename: "applications-" + stamp + ".pdf", ContentType: "application/pdf", Payload: payload}
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		file = ExportFile{Filename: "applications-" + stamp + ".csv", ContentType: "text/csv; charset=utf-8", Payload: payload}
	}

	s.metrics.RecordExport(string(format))
	s.logger.Info("applications exported", zap.String("format", string(format)), zap.Int("rows", len(apps)))
	return &file, nil
}
