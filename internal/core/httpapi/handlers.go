package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shutterbook/simulator/internal/simulator"
	"github.com/shutterbook/simulator/internal/types"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// SimulateRequest is the body of POST /v1/shops/:shopId/simulate.
// The shop comes from the path.
type SimulateRequest struct {
	ShootingCategoryID int64            `json:"shooting_category_id" jsonschema:"required,minimum=1"`
	Values             types.FormValues `json:"values"`
	SelectedItemIDs    []int64          `json:"selected_item_ids"`
}

// Health handles the health check endpoint.
func (h *Handler) Health(c *gin.Context) {
	response := HealthResponse{Status: "ok"}

	if h.db == nil {
		response.Database = "not configured"
		c.JSON(http.StatusOK, response)
		return
	}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		response.Status = "degraded"
		response.Database = "disconnected"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Database = "connected"
	c.JSON(http.StatusOK, response)
}

// Simulate recomputes the customer form for the posted answers.
func (h *Handler) Simulate(c *gin.Context) {
	shopID, err := strconv.ParseInt(c.Param("shopId"), 10, 64)
	if err != nil || shopID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid shop id"})
		return
	}

	var body SimulateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if body.ShootingCategoryID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "shooting_category_id required"})
		return
	}
	if body.Values == nil {
		body.Values = types.FormValues{}
	}

	result, err := h.sim.Simulate(c.Request.Context(), simulator.Request{
		ShopID:             shopID,
		ShootingCategoryID: body.ShootingCategoryID,
		Values:             body.Values,
		SelectedItemIDs:    body.SelectedItemIDs,
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Int64("shop_id", shopID).Msg("Simulation failed")
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusFor maps simulator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}
