package trades

import (
	"encoding/json"
	"net/http"

	"predex/engine"
	"predex/handlers/httperr"
	"predex/middleware"
)

// BuyRequest executes a buy. MaxTotal is the fee-inclusive slippage guard.
type BuyRequest struct {
	Side     string `json:"side"`
	Shares   string `json:"shares"`
	MaxTotal string `json:"maxTotal"`
}

// SellRequest executes a sell. MinNet is the after-fee slippage guard.
type SellRequest struct {
	Side   string `json:"side"`
	Shares string `json:"shares"`
	MinNet string `json:"minNet"`
}

// BuyBudgetRequest executes a budget buy: spend up to Budget, receive at
// least MinShares.
type BuyBudgetRequest struct {
	Side      string `json:"side"`
	Budget    string `json:"budget"`
	MinShares string `json:"minShares"`
}

// ExecuteResponse wraps a trade receipt.
type ExecuteResponse struct {
	Success bool            `json:"success"`
	Receipt *engine.Receipt `json:"receipt"`
}

// BuyHandler handles POST /v0/markets/{id}/buy.
func BuyHandler(e *engine.Engine, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		trader, httpErr := middleware.CallerAddress(r, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		var req BuyRequest
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
		maxTotal, ok := parseWad(req.MaxTotal)
		if !ok {
			http.Error(w, "Invalid max total", http.StatusBadRequest)
			return
		}

		receipt, err := e.ExecuteBuy(trader, id, side, shares, maxTotal)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, ExecuteResponse{Success: true, Receipt: receipt})
	}
}

// SellHandler handles POST /v0/markets/{id}/sell.
func SellHandler(e *engine.Engine, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		trader, httpErr := middleware.CallerAddress(r, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		var req SellRequest
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
		minNet, ok := parseWad(req.MinNet)
		if !ok {
			http.Error(w, "Invalid min net", http.StatusBadRequest)
			return
		}

		receipt, err := e.ExecuteSell(trader, id, side, shares, minNet)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, ExecuteResponse{Success: true, Receipt: receipt})
	}
}

// BuyBudgetHandler handles POST /v0/markets/{id}/buy-budget.
func BuyBudgetHandler(e *engine.Engine, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		trader, httpErr := middleware.CallerAddress(r, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		var req BuyBudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		side, ok := parseSide(req.Side)
		if !ok {
			http.Error(w, "Side must be YES or NO", http.StatusBadRequest)
			return
		}
		budget, ok := parseWad(req.Budget)
		if !ok {
			http.Error(w, "Invalid budget", http.StatusBadRequest)
			return
		}
		minShares, ok := parseWad(req.MinShares)
		if !ok {
			http.Error(w, "Invalid min shares", http.StatusBadRequest)
			return
		}

		receipt, err := e.ExecuteBuyForBudget(trader, id, side, budget, minShares)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, ExecuteResponse{Success: true, Receipt: receipt})
	}
}
