package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/pp-grid/internal/usecase"
)

// Handler handles HTTP requests for grid operations.
type Handler struct {
	gridService *usecase.GridService
}

// NewHandler creates a new HTTP handler.
func NewHandler(gridService *usecase.GridService) *Handler {
	return &Handler{
		gridService: gridService,
	}
}

// ListGrids handles GET /v1/grids.
func (h *Handler) ListGrids(c *gin.Context) {
	names, err := h.gridService.ListGrids()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grids": names})
}

// GetGrid handles GET /v1/grids/:name.
func (h *Handler) GetGrid(c *gin.Context) {
	summary, err := h.gridService.Describe(usecase.DescribeRequest{
		Grid: usecase.GridSource{Name: c.Param("name")},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Describe handles POST /v1/grids/describe.
func (h *Handler) Describe(c *gin.Context) {
	var req usecase.DescribeRequest
	if !bind(c, &req) {
		return
	}
	summary, err := h.gridService.Describe(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Nearest handles POST /v1/grids/nearest.
func (h *Handler) Nearest(c *gin.Context) {
	var req usecase.NearestRequest
	if !bind(c, &req) {
		return
	}
	data, err := h.gridService.Nearest(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// LonLatBox handles POST /v1/grids/lonlatbox.
func (h *Handler) LonLatBox(c *gin.Context) {
	var req usecase.BoxRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.gridService.Box(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Interpolate handles POST /v1/grids/interpolate.
func (h *Handler) Interpolate(c *gin.Context) {
	var req usecase.RegridRequest
	if !bind(c, &req) {
		return
	}
	data, err := h.gridService.Regrid(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

// writeError maps service errors to status codes: request problems are
// reported as 4xx, anything else as 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case usecase.IsClientError(err):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
