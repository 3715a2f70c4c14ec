package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saleswise/backend-go/internal/database/models"
)

// MessageResponse is the body of every operation that only reports an outcome
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondMessage(c *gin.Context, status int, success bool, message string) {
	c.JSON(status, MessageResponse{Success: success, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondMessage(c, http.StatusBadRequest, false, message)
}

func respondInternalError(c *gin.Context) {
	respondMessage(c, http.StatusInternalServerError, false, "Internal server error")
}

// parseIDParam reads a positive numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	date, err := models.ParseDate(value)
	if err != nil {
		respondBadRequest(c, "Invalid "+name+", expected YYYY-MM-DD")
		return nil, false
	}
	return &date, true
}

// parseRequiredDateQuery reads a mandatory YYYY-MM-DD query parameter
func parseRequiredDateQuery(c *gin.Context, name string) (time.Time, bool) {
	date, ok := parseDateQuery(c, name)
	if !ok {
		return time.Time{}, false
	}
	if date == nil {
		respondBadRequest(c, name+" is required")
		return time.Time{}, false
	}
	return *date, true
}
