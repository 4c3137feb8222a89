package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/NishantDakua/charaks/internal/models"
	appErrors "github.com/NishantDakua/charaks/pkg/errors"
	"github.com/NishantDakua/charaks/pkg/export"
)

type doctorLister interface {
	List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, *models.Pagination, error)
}

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	ContentType string
	Filename    string
	Body        []byte
}

// ExportService renders doctor bucket listings as downloadable files.
type ExportService struct {
	doctors doctorLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(doctors doctorLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		doctors: doctors,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

var exportHeaders = []string{"Name", "Email", "Phone", "Specialization", "Registration", "Experience", "Status", "Updated"}

// Render produces the doctor listing for a status bucket in the given format.
func (s *ExportService) Render(ctx context.Context, status models.DoctorStatus, format ExportFormat) (*ExportResult, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status bucket")
	}

	// One oversized page keeps the export a single round trip; bucket sizes
	// in this system are small.
	doctors, _, err := s.doctors.List(ctx, models.DoctorFilter{Status: status, PageSize: 100})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders}
	for _, d := range doctors {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":           d.FullName,
			"Email":          d.Email,
			"Phone":          d.PhoneNumber,
			"Specialization": d.Specialization,
			"Registration":   d.RegistrationNumber,
			"Experience":     strconv.Itoa(d.ExperienceYears),
			"Status":         string(d.Status),
			"Updated":        d.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}

	filename := fmt.Sprintf("doctors-%s.%s", status, format)
	switch format {
	case FormatCSV:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{ContentType: "text/csv", Filename: filename, Body: body}, nil
	case FormatPDF:
		body, err := s.pdf.Render(dataset, fmt.Sprintf("%s doctors", status))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{ContentType: "application/pdf", Filename: filename, Body: body}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
