package markets

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"

	"predex/engine"
	"predex/handlers/httperr"
	"predex/models"
)

func marketID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// StatusHandler handles GET /v0/markets/{id}.
func StatusHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		market, err := e.Status(id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, market)
	}
}

// MetadataResponse carries the market's text with the description rendered
// to HTML.
type MetadataResponse struct {
	ID              int64  `json:"id"`
	Question        string `json:"question"`
	DescriptionHTML string `json:"descriptionHtml"`
	MetadataRef     string `json:"metadataRef,omitempty"`
}

// MetadataHandler handles GET /v0/markets/{id}/metadata. The stored
// description is markdown; it was sanitized on the way in.
func MetadataHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		market, err := e.Status(id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(market.Description), &buf); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, MetadataResponse{
			ID:              market.ID,
			Question:        market.Question,
			DescriptionHTML: buf.String(),
			MetadataRef:     market.MetadataRef,
		})
	}
}

// PriceResponse carries the instantaneous wad prices of both sides.
type PriceResponse struct {
	MarketID int64      `json:"marketId"`
	PriceYes models.Wad `json:"priceYes"`
	PriceNo  models.Wad `json:"priceNo"`
}

// PriceHandler handles GET /v0/markets/{id}/price.
func PriceHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		priceYes, priceNo, err := e.Prices(id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, PriceResponse{
			MarketID: id,
			PriceYes: models.WadFrom(priceYes),
			PriceNo:  models.WadFrom(priceNo),
		})
	}
}
