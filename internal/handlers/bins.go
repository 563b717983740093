package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"ecoroute/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidBodyPref  = "invalid body: "
	errBinNotFound      = "bin not found"
	errInvalidCollect   = "invalid 'collect'; use true or false"
	errInvalidOnline    = "invalid 'online'; use true or false"
	errTelemetryDropped = "telemetry dropped: payload must be a JSON object with an id"
	errTelemetryRead    = "failed to read telemetry body"

	maxTelemetryBody = 64 << 10
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Debugw(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// AddBinRequest is the payload for registering a bin without a sensor.
type AddBinRequest struct {
	Name string   `json:"name" binding:"required" example:"Market Gate"`
	Lat  *float64 `json:"lat" binding:"required" example:"-1.1145"`
	Lng  *float64 `json:"lng" binding:"required" example:"36.662"`
}

// @Summary      Health check
// @Description  Liveness plus the telemetry broker link state.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}
	if h.services != nil && h.services.Monitoring != nil {
		resp["broker"] = h.services.Monitoring.Dashboard(c.Request.Context()).Broker
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Dashboard snapshot
// @Description  Every bin with derived status and liveness, header counters and the current route.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  models.Dashboard
// @Router       /api/v1/dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Dashboard(c.Request.Context()))
}

// @Summary      List bins
// @Tags         bins
// @Produce      json
// @Param        status   query  string  false  "Collection status"  Enums(OK,FULL,SMELLY)
// @Param        collect  query  bool    false  "Only bins that do (true) or do not (false) need collection"
// @Param        online   query  bool    false  "Only online (true) or offline (false) bins"
// @Success      200  {object}  map[string]interface{}  "count, bins"
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/bins [get]
func (h *Handler) listBins(c *gin.Context) {
	st, err := service.ParseStatus(c.Query("status"))
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "bins_invalid_status", err)
		return
	}
	f := service.BinFilter{Status: st}

	if f.Collect, err = parseOptionalBool(c.Query("collect")); err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errInvalidCollect, "bins_invalid_collect", err)
		return
	}
	if f.Online, err = parseOptionalBool(c.Query("online")); err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errInvalidOnline, "bins_invalid_online", err)
		return
	}

	bins := h.services.Bins.List(c.Request.Context(), f)
	c.JSON(http.StatusOK, gin.H{
		"count": len(bins),
		"bins":  bins,
	})
}

// @Summary      Get bin
// @Tags         bins
// @Produce      json
// @Param        id   path  string  true  "Bin id"
// @Success      200  {object}  models.BinView
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/bins/{id} [get]
func (h *Handler) getBin(c *gin.Context) {
	v, err := h.services.Bins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBinNotFound) {
			h.logAndJSONError(c, http.StatusNotFound, errBinNotFound, "bin_not_found", err)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load bin", "bin_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Add manual bin
// @Description  Registers a bin without a sensor. Manual bins start empty and are always online.
// @Tags         bins
// @Accept       json
// @Produce      json
// @Param        body  body      AddBinRequest  true  "Bin"
// @Success      201   {object}  models.Bin
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/bins [post]
func (h *Handler) addBin(c *gin.Context) {
	var req AddBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	b, err := h.services.Bins.AddManual(c.Request.Context(), service.ManualBinParams{
		Name: req.Name,
		Lat:  *req.Lat,
		Lng:  *req.Lng,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidBin) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to add bin", "bin_add_failed", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// @Summary      Inject telemetry
// @Description  Applies one raw sensor message exactly as if it had arrived from the broker.
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{id, name?, lat?, lon?, fill_level?, gas?}"
// @Success      202   {object}  models.Bin
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/telemetry [post]
func (h *Handler) postTelemetry(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTelemetryBody))
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errTelemetryRead, "telemetry_read_failed", err)
		return
	}
	b, ok := h.services.Telemetry.Ingest(c.Request.Context(), raw, time.Now())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errTelemetryDropped})
		return
	}
	c.JSON(http.StatusAccepted, b)
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
