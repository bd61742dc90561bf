package markets

import (
	"net/http"
	"strconv"

	"predex/engine"
	"predex/handlers/httperr"
	"predex/models"
)

// EventsResponse is one page of a market's event log, newest first.
type EventsResponse struct {
	MarketID int64          `json:"marketId"`
	Events   []models.Event `json:"events"`
	Count    int            `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// EventsHandler handles GET /v0/markets/{id}/events with page/pageSize
// query parameters.
func EventsHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
				page = parsed
			}
		}
		pageSize := 50
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 200 {
				pageSize = parsed
			}
		}

		events, err := e.Events(id, pageSize, (page-1)*pageSize)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, EventsResponse{
			MarketID: id,
			Events:   events,
			Count:    len(events),
			Page:     page,
			PageSize: pageSize,
		})
	}
}
