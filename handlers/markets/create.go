package markets

import (
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"predex/engine"
	"predex/handlers/httperr"
	"predex/ledger"
	"predex/middleware"
	"predex/models"
	"predex/security"
)

// CreateRequest is the request body for creating a market. B is a wad
// decimal string; empty means the configured default liquidity.
type CreateRequest struct {
	Question        string    `json:"question"`
	Description     string    `json:"description"`
	B               string    `json:"b,omitempty"`
	CollateralToken string    `json:"collateralToken"`
	Oracle          string    `json:"oracle"`
	CloseTime       time.Time `json:"closeTime"`
	MetadataRef     string    `json:"metadataRef,omitempty"`
}

// CreateResponse is returned after creating a market.
type CreateResponse struct {
	Success bool          `json:"success"`
	Market  models.Market `json:"market"`
}

// CreateHandler handles POST /v0/markets.
func CreateHandler(e *engine.Engine, sec *security.Service, jwtSecret []byte, defaultB *big.Int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		creator, httpErr := middleware.CallerAddress(r, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		sanitized, err := sec.ValidateAndSanitizeMarketInput(security.MarketInput{
			Question:    req.Question,
			Description: req.Description,
			MetadataRef: req.MetadataRef,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		b := new(big.Int).Set(defaultB)
		if req.B != "" {
			parsed, ok := new(big.Int).SetString(req.B, 10)
			if !ok {
				http.Error(w, "Invalid liquidity parameter", http.StatusBadRequest)
				return
			}
			b = parsed
		}

		market, err := e.CreateMarket(creator, ledger.CreateParams{
			Question:        sanitized.Question,
			Description:     sanitized.Description,
			B:               models.WadFrom(b),
			CollateralToken: req.CollateralToken,
			Oracle:          req.Oracle,
			CloseTime:       req.CloseTime,
			MetadataRef:     sanitized.MetadataRef,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}

		httperr.JSON(w, http.StatusCreated, CreateResponse{Success: true, Market: *market})
	}
}
