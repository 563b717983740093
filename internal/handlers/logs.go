package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ecoroute/internal/service"

	"github.com/gin-gonic/gin"
)

const layoutDate = "2006-01-02"

// eventsResponse is the body of both history endpoints.
type eventsResponse struct {
	Count  int `json:"count"`
	Events any `json:"events"`
}

// @Summary      List bin events
// @Description  Alerts, offline/online transitions, discoveries and route plans, oldest first. Times are RFC3339 or YYYY-MM-DD; a date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from   query  string  false  "Start of range, inclusive"  example(2025-08-01)
// @Param        to     query  string  false  "End of range, inclusive"    example(2025-08-31)
// @Param        type   query  string  false  "Event type"  Enums(DISCOVERED,MANUAL_ADD,ALERT,ALERT_CLEARED,OFFLINE,ONLINE,ROUTE_PLANNED,ROUTE_FALLBACK,ROUTE_CLEARED)
// @Param        bin    query  string  false  "Only events of this bin"
// @Param        limit  query  int     false  "Keep the newest N matches (1-1000)"
// @Success      200    {object}  eventsResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	f, err := logFilterFromQuery(c)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "logs_bad_query", err)
		return
	}
	f.BinID = c.Query("bin")
	h.writeEvents(c, f)
}

// @Summary      Bin history
// @Description  Event log of one bin. Accepts the same filters as /api/v1/logs except 'bin'.
// @Tags         bins
// @Produce      json
// @Param        id     path   string  true   "Bin id"
// @Param        from   query  string  false  "Start of range, inclusive"
// @Param        to     query  string  false  "End of range, inclusive"
// @Param        type   query  string  false  "Event type"
// @Param        limit  query  int     false  "Keep the newest N matches (1-1000)"
// @Success      200    {object}  eventsResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /api/v1/bins/{id}/events [get]
func (h *Handler) getBinEvents(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.services.Bins.Get(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrBinNotFound) {
			h.logAndJSONError(c, http.StatusNotFound, errBinNotFound, "bin_not_found", err, "bin_id", id)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load bin", "bin_get_failed", err)
		return
	}
	f, err := logFilterFromQuery(c)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "bin_events_bad_query", err, "bin_id", id)
		return
	}
	f.BinID = id
	h.writeEvents(c, f)
}

func (h *Handler) writeEvents(c *gin.Context, f service.LogFilter) {
	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrUnknownEventType),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidLimit):
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "logs_bad_filter", err)
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"type", f.Type, "bin_id", f.BinID)
		return
	}
	c.JSON(http.StatusOK, eventsResponse{Count: len(events), Events: events})
}

// logFilterFromQuery reads from, to, type and limit. Semantic checks are
// left to the event log service.
func logFilterFromQuery(c *gin.Context) (service.LogFilter, error) {
	var (
		f   = service.LogFilter{Type: c.Query("type")}
		err error
	)
	if f.From, err = queryTime(c.Query("from"), false); err != nil {
		return f, fmt.Errorf("invalid 'from': %w", err)
	}
	if f.To, err = queryTime(c.Query("to"), true); err != nil {
		return f, fmt.Errorf("invalid 'to': %w", err)
	}
	if s := c.Query("limit"); s != "" {
		if f.Limit, err = strconv.Atoi(s); err != nil || f.Limit < 1 {
			return f, fmt.Errorf("invalid 'limit' %q: want 1-%d", s, service.MaxLogLimit)
		}
	}
	return f, nil
}

// queryTime parses RFC3339 or a bare date. A bare date used as an upper
// bound means the last instant of that day.
func queryTime(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(layoutDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", s)
	}
	if upper {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d, nil
}
