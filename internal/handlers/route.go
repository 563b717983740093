package handlers

import (
	"errors"
	"io"
	"net/http"

	"ecoroute/internal/models"
	"ecoroute/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	statusCleared = "cleared"

	errNoRoute       = "no route planned yet"
	errInvalidOrigin = "invalid origin: lat must be in [-90,90] and lng in [-180,180]"
)

// PlanRouteRequest optionally carries the truck position. Without it the
// route starts at the first bin.
type PlanRouteRequest struct {
	Origin *models.Position `json:"origin,omitempty"`
}

// @Summary      Plan collection route
// @Description  Orders the bins that need collection. Never fails: planner or road-geometry outages degrade to discovery order and straight lines.
// @Tags         route
// @Accept       json
// @Produce      json
// @Param        body  body      PlanRouteRequest  false  "Optional origin"
// @Success      200   {object}  models.RouteResult
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/route [post]
func (h *Handler) planRoute(c *gin.Context) {
	var req PlanRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Origin != nil && !repository.ValidPosition(req.Origin.Lat, req.Origin.Lng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidOrigin})
		return
	}
	c.JSON(http.StatusOK, h.services.Routing.PlanRoute(c.Request.Context(), req.Origin))
}

// @Summary      Current route
// @Tags         route
// @Produce      json
// @Success      200  {object}  models.RouteResult
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/route [get]
func (h *Handler) getRoute(c *gin.Context) {
	r, ok := h.services.Routing.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoRoute})
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Clear route
// @Tags         route
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/route [delete]
func (h *Handler) clearRoute(c *gin.Context) {
	h.services.Routing.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}
