package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
	"github.com/tarsit/tarsit-api/pkg/export"
)

type calendarSource interface {
	Calendar(ctx context.Context, actor *models.JWTClaims, businessID, startDate, endDate string) (*dto.CalendarResponse, error)
}

type tabularRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

var calendarExportHeaders = []string{"Date", "Time", "Duration", "Status", "Customer", "Email", "Service", "Notes", "Cancel Reason"}

// CalendarExportService renders a business calendar as a downloadable CSV or PDF file.
type CalendarExportService struct {
	calendar  calendarSource
	renderers map[string]tabularRenderer
	logger    *zap.Logger
}

// NewCalendarExportService constructs the exporter; nil renderers fall back to the pkg/export implementations.
func NewCalendarExportService(calendar calendarSource, csv, pdf tabularRenderer, logger *zap.Logger) *CalendarExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &CalendarExportService{
		calendar:  calendar,
		renderers: map[string]tabularRenderer{"csv": csv, "pdf": pdf},
		logger:    logger,
	}
}

// Export loads the calendar with the caller's permissions and renders it in the requested format.
func (s *CalendarExportService) Export(ctx context.Context, actor *models.JWTClaims, businessID string, query dto.CalendarQuery) (*dto.CalendarExport, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clonef(appErrors.ErrValidation, "unsupported export format %q", query.Format)
	}

	cal, err := s.calendar.Calendar(ctx, actor, businessID, query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Appointments %s to %s", cal.StartDate, cal.EndDate)
	body, err := renderer.Render(calendarDataset(cal), title)
	if err != nil {
		s.logger.Error("calendar export failed", zap.String("business_id", businessID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render calendar")
	}

	return &dto.CalendarExport{
		Filename:    fmt.Sprintf("appointments-%s-%s-%s.%s", cal.BusinessID, cal.StartDate, cal.EndDate, format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func calendarDataset(cal *dto.CalendarResponse) export.Dataset {
	days := make([]string, 0, len(cal.Days))
	for day := range cal.Days {
		days = append(days, day)
	}
	sort.Strings(days)

	rows := make([]map[string]string, 0, cal.Total)
	for _, day := range days {
		for _, appt := range cal.Days[day] {
			row := map[string]string{
				"Date":     day,
				"Time":     appt.Date.Format("15:04"),
				"Duration": strconv.Itoa(appt.Duration),
				"Status":   string(appt.Status),
			}
			if appt.Customer != nil {
				row["Customer"] = appt.Customer.Name
				row["Email"] = appt.Customer.Email
			}
			if appt.Service != nil {
				row["Service"] = appt.Service.Name
			}
			if appt.Notes != nil {
				row["Notes"] = *appt.Notes
			}
			if appt.CancelReason != nil {
				row["Cancel Reason"] = *appt.CancelReason
			}
			rows = append(rows, row)
		}
	}
	return export.Dataset{Headers: calendarExportHeaders, Rows: rows}
}
