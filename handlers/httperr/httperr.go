// Package httperr maps engine error kinds onto HTTP responses.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"predex/engine"
	"predex/ledger"
	"predex/lmsr"
	"predex/logging"
	"predex/wadmath"
)

// StatusFor translates an error kind into an HTTP status code. Unknown
// errors are internal.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrPaused):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrMarketClosed),
		errors.Is(err, ledger.ErrAlreadyResolved),
		errors.Is(err, ledger.ErrNotResolved),
		errors.Is(err, engine.ErrSlippageExceeded):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidParameter),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, engine.ErrInsufficientInventory),
		errors.Is(err, lmsr.ErrLiquidity),
		errors.Is(err, lmsr.ErrShares),
		errors.Is(err, lmsr.ErrSpend),
		errors.Is(err, wadmath.ErrDomain),
		errors.Is(err, wadmath.ErrOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write reports err to the client at the mapped status. Internal errors are
// logged and masked.
func Write(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.Error("internal error: %v", err)
		message = "Internal server error"
	}
	http.Error(w, message, status)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
