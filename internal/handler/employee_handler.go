package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saleswise/backend-go/internal/database/models"
	"github.com/saleswise/backend-go/internal/database/repository"
	"github.com/saleswise/backend-go/internal/database/service"
)

// EmployeeHandler handles HTTP requests for employees
type EmployeeHandler struct {
	service       service.EmployeeService
	reportService service.ReportService
	logger        *slog.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(service service.EmployeeService, reportService service.ReportService, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service:       service,
		reportService: reportService,
		logger:        logger,
	}
}

type CreateEmployeeRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type UpdateEmployeeRequest struct {
	Name   string `json:"name" binding:"required,max=255"`
	Active *bool  `json:"active"`
}

type EmployeeResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func toEmployeeResponse(employee models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:     employee.ID,
		Name:   employee.Name,
		Active: employee.Active,
	}
}

func toEmployeeResponses(employees []models.Employee) []EmployeeResponse {
	responses := make([]EmployeeResponse, 0, len(employees))
	for _, employee := range employees {
		responses = append(responses, toEmployeeResponse(employee))
	}
	return responses
}

// List returns the active employees
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.service.List()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponses(employees))
}

// Create adds an employee
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid employee request", "error", err)
		respondBadRequest(c, "Invalid request. name required.")
		return
	}

	employee, err := h.service.Create(req.Name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEmployeeResponse(*employee))
}

// Update renames and optionally (de)activates an employee
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid employee update request", "error", err)
		respondBadRequest(c, "Invalid request. name required.")
		return
	}

	employee, err := h.service.Update(c.Request.Context(), id, req.Name, req.Active)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(*employee))
}

// Delete deactivates an employee
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, true, "Employee deactivated successfully")
}

// Stats returns per-employee totals between start_date and end_date
func (h *EmployeeHandler) Stats(c *gin.Context) {
	start, ok := parseRequiredDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseRequiredDateQuery(c, "end_date")
	if !ok {
		return
	}

	stats, err := h.reportService.EmployeeStats(start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *EmployeeHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		respondMessage(c, http.StatusNotFound, false, "Employee not found")
	case errors.Is(err, service.ErrInvalidEmployeeName), errors.Is(err, service.ErrInvalidDateRange):
		respondBadRequest(c, err.Error())
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		respondInternalError(c)
	}
}
