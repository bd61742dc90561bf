package trades

import (
	"encoding/json"
	"net/http"

	"predex/engine"
	"predex/handlers/httperr"
)

// QuoteRequest asks for the price of a prospective trade. Shares is a wad
// decimal string.
type QuoteRequest struct {
	Side   string `json:"side"`
	Shares string `json:"shares"`
}

// QuoteBuyHandler handles POST /v0/markets/{id}/quote/buy.
func QuoteBuyHandler(e *engine.Engine) http.HandlerFunc {
	return quoteHandler(e, true)
}

// QuoteSellHandler handles POST /v0/markets/{id}/quote/sell.
func QuoteSellHandler(e *engine.Engine) http.HandlerFunc {
	return quoteHandler(e, false)
}

func quoteHandler(e *engine.Engine, buy bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		var req QuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		side, ok := parseSide(req.Side)
		if !ok {
			http.Error(w, "Side must be YES or NO", http.StatusBadRequest)
			return
		}
		shares, ok := parseWad(req.Shares)
		if !ok {
			http.Error(w, "Invalid share amount", http.StatusBadRequest)
			return
		}

		var quote *engine.Quote
		var err error
		if buy {
			quote, err = e.QuoteBuy(id, side, shares)
		} else {
			quote, err = e.QuoteSell(id, side, shares)
		}
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, quote)
	}
}
