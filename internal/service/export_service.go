package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
)

var (
	ErrExportInvalidDates  = errors.New("invalid export dates")
	ErrExportRangeTooLarge = errors.New("export range exceeds the allowed maximum")
	ErrExportNoData        = errors.New("no payable attendance in the requested range")
	ErrExportGenerateFail  = errors.New("workbook generation failed")
)

// ExportService builds the TTA payroll export and the monthly activity
// report. Row selection is identical whether the caller wants the raw
// rows or the rendered workbook.
type ExportService interface {
	// BuildTTA selects and aggregates the payable rows for [start, end].
	BuildTTA(ctx context.Context, req *dto.ExportTTARequest) (*dto.TTAExportResult, error)
	// TTAWorkbook renders BuildTTA's result as an .xlsx file.
	TTAWorkbook(ctx context.Context, req *dto.ExportTTARequest) (*bytes.Buffer, string, error)
	// MonthlyWorkbook renders one month of session activity as .xlsx.
	MonthlyWorkbook(ctx context.Context, req *dto.MonthlyReportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.FMPAConfig
	repo   *repository.Repository
	logger *zap.Logger
}

func NewExportService(cfg *config.FMPAConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

// BuildTTA selects PRESENT registrations with validated hours on
// completed sessions starting inside [start, end]. The range may not
// exceed fmpa.export_max_days. Rows keep the amounts frozen at
// validation time; the total is their sum.
func (s *exportService) BuildTTA(ctx context.Context, req *dto.ExportTTARequest) (*dto.TTAExportResult, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrExportInvalidDates
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrExportInvalidDates
	}
	if end.Before(start) {
		return nil, ErrExportInvalidDates
	}
	if int(end.Sub(start).Hours()/24) > s.cfg.ExportMaxDays {
		return nil, ErrExportRangeTooLarge
	}
	// Whole last day included.
	endOfRange := end.AddDate(0, 0, 1).Add(-time.Second)

	regs, err := s.repo.Registration.ListForExport(ctx, start, endOfRange, req.CentreID)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, ErrExportNoData
	}

	result := &dto.TTAExportResult{Rows: make([]dto.TTARow, 0, len(regs))}
	for _, reg := range regs {
		row := buildTTARow(&reg)
		result.Rows = append(result.Rows, row)
		result.Total += row.Amount
	}
	result.Total = roundCents(result.Total)

	s.logger.Info("tta export built",
		zap.Int("rows", len(result.Rows)),
		zap.Float64("total", result.Total),
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate))
	return result, nil
}

func buildTTARow(reg *model.Registration) dto.TTARow {
	row := dto.TTARow{
		SessionDate: reg.Session.StartAt.Format("02/01/2006"),
		HourlyRate:  reg.Session.HourlyRate,
		TTACode:     reg.Session.TTACode,
	}
	if reg.Personnel != nil {
		row.BadgeNumber = reg.Personnel.BadgeNumber
		row.LastName = reg.Personnel.LastName
		row.FirstName = reg.Personnel.FirstName
		row.Grade = reg.Personnel.Grade
		if reg.Personnel.Centre != nil {
			row.CentreName = reg.Personnel.Centre.Name
			row.CentreCode = reg.Personnel.Centre.Code
		}
	}
	if reg.Session.TrainingType != nil {
		row.TrainingLabel = reg.Session.TrainingType.Label
	}
	if reg.Session.Instructor != nil {
		row.InstructorName = reg.Session.Instructor.FullName()
	}
	if reg.ValidatedHours != nil {
		row.Hours = *reg.ValidatedHours
	}
	if reg.TTAAmount != nil {
		row.Amount = *reg.TTAAmount
	}
	return row
}

var ttaHeaders = []string{
	"Matricule", "Nom", "Prénom", "Grade", "Centre", "Code centre",
	"Date session", "Formation", "Heures", "Taux horaire", "Montant",
	"Formateur", "Code TTA",
}

func (s *exportService) TTAWorkbook(ctx context.Context, req *dto.ExportTTARequest) (*bytes.Buffer, string, error) {
	result, err := s.BuildTTA(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Export TTA"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{12, 18, 16, 8, 22, 12, 14, 26, 9, 12, 12, 22, 12}
	for i, w := range widths {
		f.SetColWidth(sheetName, colName(i), colName(i), w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C00000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range ttaHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, cell("A", 1), cell(colName(len(ttaHeaders)-1), 1), headerStyle)

	row := 2
	for _, r := range result.Rows {
		values := []interface{}{
			r.BadgeNumber, r.LastName, r.FirstName, r.Grade, r.CentreName,
			r.CentreCode, r.SessionDate, r.TrainingLabel, r.Hours,
			r.HourlyRate, r.Amount, r.InstructorName, r.TTACode,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellValue(sheetName, cell("J", row), "Total")
	f.SetCellValue(sheetName, cell("K", row), result.Total)
	f.SetCellStyle(sheetName, cell("J", row), cell("K", row), totalStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("tta workbook write failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("export_tta_%s_%s.xlsx",
		req.StartDate, req.EndDate)
	return buf, filename, nil
}

// MonthlyWorkbook lists every session of the month with its occupancy
// and attendance counts. Cancelled sessions appear so the report
// reflects the planned activity, not only what took place.
func (s *exportService) MonthlyWorkbook(ctx context.Context, req *dto.MonthlyReportRequest) (*bytes.Buffer, string, error) {
	monthStart, err := time.Parse("2006-01", req.Month)
	if err != nil {
		return nil, "", ErrExportInvalidDates
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	sessions, err := s.repo.Session.ListForReport(ctx, monthStart, monthEnd, req.CentreID)
	if err != nil {
		return nil, "", err
	}
	if len(sessions) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Rapport mensuel"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Date", "Formation", "Centre", "Lieu", "Formateur", "Statut",
		"Places", "Inscrits", "Présents", "Heures validées", "Montant total",
	}
	widths := []float64{12, 26, 22, 22, 22, 12, 8, 9, 9, 14, 14}
	for i, w := range widths {
		f.SetColWidth(sheetName, colName(i), colName(i), w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C00000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, cell("A", 1), cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, session := range sessions {
		present := 0
		registered := 0
		hours := 0.0
		amount := 0.0
		for _, reg := range session.Registrations {
			if model.LiveRegistrationStatus(reg.Status) {
				registered++
			}
			if reg.Status == model.RegistrationPresent {
				present++
				if reg.ValidatedHours != nil {
					hours += *reg.ValidatedHours
				}
				if reg.TTAAmount != nil {
					amount += *reg.TTAAmount
				}
			}
		}

		label := ""
		if session.TrainingType != nil {
			label = session.TrainingType.Label
		}
		centreName := ""
		if session.Centre != nil {
			centreName = session.Centre.Name
		}
		instructorName := ""
		if session.Instructor != nil {
			instructorName = session.Instructor.FullName()
		}

		values := []interface{}{
			session.StartAt.Format("02/01/2006"), label, centreName,
			session.Location, instructorName, session.Status,
			session.MaxSeats, registered, present, hours, roundCents(amount),
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("monthly workbook write failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("rapport_fmpa_%s.xlsx", req.Month)
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
