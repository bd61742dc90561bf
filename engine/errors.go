package engine

import "errors"

// Error kinds the trade engine adds on top of the ledger's. Handlers map
// these to HTTP statuses; callers decide whether to resubmit with adjusted
// parameters, the engine never retries.
var (
	ErrUnauthorized          = errors.New("engine: caller is not the market oracle")
	ErrSlippageExceeded      = errors.New("engine: slippage guard violated")
	ErrInsufficientInventory = errors.New("engine: sell exceeds outstanding inventory")
	ErrPaused                = errors.New("engine: trading is paused")
)
