// Package trades exposes the quote and execute trade paths over HTTP.
// Quotes are open to anyone; execution requires a caller identity.
package trades

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"predex/models"
)

func marketID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// parseWad parses a non-negative wad decimal string.
func parseWad(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}

func parseSide(s string) (models.Side, bool) {
	side := models.Side(s)
	return side, side.Valid()
}
