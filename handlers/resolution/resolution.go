// Package resolution exposes oracle resolution and holder redemption.
package resolution

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"predex/engine"
	"predex/handlers/httperr"
	"predex/middleware"
	"predex/models"
)

func marketID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// ResolveRequest names the terminal outcome: YES, NO or INVALID.
type ResolveRequest struct {
	Outcome string `json:"outcome"`
}

// ResolveHandler handles POST /v0/markets/{id}/resolve. The caller identity
// must match the market's oracle.
func ResolveHandler(e *engine.Engine, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		caller, httpErr := middleware.CallerAddress(r, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		var req ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := e.Resolve(caller, id, models.Outcome(req.Outcome)); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"outcome": req.Outcome,
		})
	}
}

// RedeemResponse wraps a redemption receipt.
type RedeemResponse struct {
	Success bool            `json:"success"`
	Receipt *engine.Receipt `json:"receipt"`
}

// RedeemHandler handles POST /v0/markets/{id}/redeem.
func RedeemHandler(e *engine.Engine, jwtSecret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		caller, httpErr := middleware.CallerAddress(r, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		id, ok := marketID(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		receipt, err := e.Redeem(caller, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.JSON(w, http.StatusOK, RedeemResponse{Success: true, Receipt: receipt})
	}
}
