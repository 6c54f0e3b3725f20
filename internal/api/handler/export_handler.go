package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/service"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler exposes the TTA payroll export and the monthly report.
type ExportHandler struct {
	cfg       *config.FMPAConfig
	exportSvc service.ExportService
}

func NewExportHandler(cfg *config.FMPAConfig, exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{cfg: cfg, exportSvc: exportSvc}
}

// ExportTTA streams the payroll workbook for a date range. On top of
// the service's one-year ceiling, this entry point refuses ranges over
// fmpa.export_window_months (three by default); the response
// details carry the limit so clients can adjust.
// GET /api/v1/export/tta
func (h *ExportHandler) ExportTTA(c *gin.Context) {
	var req dto.ExportTTARequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	if ok := h.checkWindow(c, req.StartDate, req.EndDate); !ok {
		return
	}

	buf, filename, err := h.exportSvc.TTAWorkbook(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// PreviewTTA returns the rows and total as JSON, for on-screen review
// before download.
// GET /api/v1/export/tta/preview
func (h *ExportHandler) PreviewTTA(c *gin.Context) {
	var req dto.ExportTTARequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	if ok := h.checkWindow(c, req.StartDate, req.EndDate); !ok {
		return
	}

	result, err := h.exportSvc.BuildTTA(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.OK(c, result)
}

// MonthlyReport streams one month of session activity.
// GET /api/v1/export/monthly
func (h *ExportHandler) MonthlyReport(c *gin.Context) {
	var req dto.MonthlyReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	buf, filename, err := h.exportSvc.MonthlyWorkbook(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// checkWindow enforces the entry-point ceiling. Parse failures fall
// through: the service reports them with the proper code.
func (h *ExportHandler) checkWindow(c *gin.Context, startDate, endDate string) bool {
	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil {
		return true
	}
	// Calendar-month arithmetic: three months from 2026-01-01 ends at
	// 2026-04-01, so an end date of 2026-04-02 is over the ceiling.
	if end.After(start.AddDate(0, h.cfg.ExportWindowMonths, 0)) {
		response.ErrorWithDetails(c, http.StatusBadRequest, 15002,
			"export range too large",
			fmt.Sprintf("maximum range is %d months", h.cfg.ExportWindowMonths))
		return false
	}
	return true
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportInvalidDates):
		response.BadRequest(c, 15001, "invalid export dates")
	case errors.Is(err, service.ErrExportRangeTooLarge):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15002,
			"export range too large",
			fmt.Sprintf("maximum range is %d days", h.cfg.ExportMaxDays))
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 15003, "no payable attendance in the requested range")
	default:
		response.InternalError(c)
	}
}
