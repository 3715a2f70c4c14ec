package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/saleswise/backend-go/internal/database/models"
	"github.com/saleswise/backend-go/internal/database/repository"
	"github.com/saleswise/backend-go/internal/database/service"
)

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	service service.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service service.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger,
	}
}

// SaleRequest is the body of create and update.
// sales_amount accepts a JSON number or a decimal string.
type SaleRequest struct {
	Date        string           `json:"date" binding:"required"`
	Shift       models.Shift     `json:"shift" binding:"required"`
	SalesAmount *decimal.Decimal `json:"sales_amount" binding:"required"`
	EmployeeIDs []uint           `json:"employee_ids"`
}

type SaleResponse struct {
	ID          uint               `json:"id"`
	Date        string             `json:"date"`
	Shift       models.Shift       `json:"shift"`
	SalesAmount decimal.Decimal    `json:"sales_amount"`
	Employees   []EmployeeResponse `json:"employees"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toSaleResponse(sale *models.Sale) SaleResponse {
	return SaleResponse{
		ID:          sale.ID,
		Date:        sale.Date.Format(models.DateLayout),
		Shift:       sale.Shift,
		SalesAmount: sale.SalesAmount,
		Employees:   toEmployeeResponses(sale.Employees()),
		CreatedAt:   sale.CreatedAt,
		UpdatedAt:   sale.UpdatedAt,
	}
}

func (h *SaleHandler) bindSaleInput(c *gin.Context) (service.SaleInput, bool) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid sale request", "error", err)
		respondBadRequest(c, "Invalid request. date, shift and sales_amount required.")
		return service.SaleInput{}, false
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		respondBadRequest(c, service.ErrInvalidDate.Error())
		return service.SaleInput{}, false
	}

	return service.SaleInput{
		Date:        date,
		Shift:       req.Shift,
		SalesAmount: *req.SalesAmount,
		EmployeeIDs: req.EmployeeIDs,
	}, true
}

// List returns sales for a date, a date range, or all sales
func (h *SaleHandler) List(c *gin.Context) {
	var filter repository.SaleFilter
	var ok bool

	if filter.Date, ok = parseDateQuery(c, "date"); !ok {
		return
	}
	if filter.StartDate, ok = parseDateQuery(c, "start_date"); !ok {
		return
	}
	if filter.EndDate, ok = parseDateQuery(c, "end_date"); !ok {
		return
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		respondBadRequest(c, service.ErrInvalidDateRange.Error())
		return
	}

	sales, err := h.service.List(filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	responses := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		responses = append(responses, toSaleResponse(&sales[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns one sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Get(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(sale))
}

// Create records a sale and its employees
func (h *SaleHandler) Create(c *gin.Context) {
	input, ok := h.bindSaleInput(c)
	if !ok {
		return
	}

	sale, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSaleResponse(sale))
}

// Update overwrites a sale and replaces its employees
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	input, ok := h.bindSaleInput(c)
	if !ok {
		return
	}

	sale, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(sale))
}

// Delete removes a sale and its employee links
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, true, "Sale deleted successfully")
}

func (h *SaleHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSaleNotFound):
		respondMessage(c, http.StatusNotFound, false, "Sale not found")
	case errors.Is(err, repository.ErrEmployeeNotFound):
		respondMessage(c, http.StatusNotFound, false, "Employee not found")
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidShift),
		errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrAmountTooLarge):
		respondBadRequest(c, err.Error())
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		respondInternalError(c)
	}
}
