package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saleswise/backend-go/internal/database/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles HTTP requests for sales reports
type ReportHandler struct {
	service service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// Daily handles GET /reports/daily?date=YYYY-MM-DD
func (h *ReportHandler) Daily(c *gin.Context) {
	date, ok := parseRequiredDateQuery(c, "date")
	if !ok {
		return
	}

	report, err := h.service.DailyReport(c.Request.Context(), date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Monthly handles GET /reports/monthly?month=M&year=YYYY
func (h *ReportHandler) Monthly(c *gin.Context) {
	month, year, ok := h.parseMonthQuery(c)
	if !ok {
		return
	}

	report, err := h.service.MonthlyReport(c.Request.Context(), month, year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportMonthly streams the monthly report as an XLSX attachment
func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	month, year, ok := h.parseMonthQuery(c)
	if !ok {
		return
	}

	data, err := h.service.ExportMonthlyReport(c.Request.Context(), month, year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("sales-%04d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ReportHandler) parseMonthQuery(c *gin.Context) (int, int, bool) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		respondBadRequest(c, "month is required and must be a number")
		return 0, 0, false
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondBadRequest(c, "year is required and must be a number")
		return 0, 0, false
	}

	return month, year, true
}

func (h *ReportHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMonth), errors.Is(err, service.ErrInvalidYear):
		respondBadRequest(c, err.Error())
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		respondInternalError(c)
	}
}
