// Package engine orchestrates quoting and execution of trades against the
// LMSR maker, and market resolution and redemption. Quote paths are pure
// reads; execute paths hold the market's writer lock and apply the collateral
// debit, fee routing, inventory update and share mint or burn inside one
// database transaction, so a failed guard leaves no partial state.
package engine

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"predex/ledger"
	"predex/lmsr"
	"predex/models"
)

const feeDenominator = 10_000

// Config carries the engine-level economics.
type Config struct {
	// FeeBps is the trade fee in basis points, applied to the raw cost of a
	// buy and the gross payout of a sell.
	FeeBps int64
	// FeeRecipient receives routed fees.
	FeeRecipient string
}

// Engine is the trade and settlement core over one market ledger.
type Engine struct {
	markets    *ledger.Ledger
	collateral ledger.CollateralLedger
	shares     ledger.ShareLedger
	cfg        Config

	// Now supplies the current time; tests inject a fixed clock. Time is
	// observed only by comparison against close times.
	Now func() time.Time
}

// New wires an engine. The fee must lie in [0, 10000] basis points.
func New(markets *ledger.Ledger, collateral ledger.CollateralLedger, shares ledger.ShareLedger, cfg Config) (*Engine, error) {
	if cfg.FeeBps < 0 || cfg.FeeBps > feeDenominator {
		return nil, fmt.Errorf("%w: fee %d bps out of range", ledger.ErrInvalidParameter, cfg.FeeBps)
	}
	if cfg.FeeBps > 0 && cfg.FeeRecipient == "" {
		return nil, fmt.Errorf("%w: fee recipient is required", ledger.ErrInvalidParameter)
	}
	return &Engine{
		markets:    markets,
		collateral: collateral,
		shares:     shares,
		cfg:        cfg,
		Now:        time.Now,
	}, nil
}

// Quote is the priced view of a prospective trade. For buys Total is the
// fee-inclusive debit; for sells it is the net credit after fee.
type Quote struct {
	MarketID int64       `json:"marketId"`
	Side     models.Side `json:"side"`
	Shares   models.Wad  `json:"shares"`
	Raw      models.Wad  `json:"raw"`
	Fee      models.Wad  `json:"fee"`
	Total    models.Wad  `json:"total"`
}

// Receipt reports an executed trade or redemption.
type Receipt struct {
	MarketID int64       `json:"marketId"`
	Side     models.Side `json:"side,omitempty"`
	Shares   models.Wad  `json:"shares"`
	Raw      models.Wad  `json:"raw"`
	Fee      models.Wad  `json:"fee"`
	Total    models.Wad  `json:"total"`
}

func (e *Engine) fee(amount *big.Int) *big.Int {
	f := new(big.Int).Mul(amount, big.NewInt(e.cfg.FeeBps))
	return f.Quo(f, big.NewInt(feeDenominator))
}

func makerFor(m *models.Market) (*lmsr.LMSR, error) {
	return lmsr.New(m.B.Big())
}

func (e *Engine) appendEvent(tx *gorm.DB, ev models.Event) error {
	ev.ID = uuid.NewString()
	ev.CreatedAt = e.Now()
	return tx.Create(&ev).Error
}

// CreateMarket validates parameters, records the collaborator's token
// precision and persists the market with zero inventory.
func (e *Engine) CreateMarket(creator string, p ledger.CreateParams) (*models.Market, error) {
	decimals, err := e.collateral.Decimals(p.CollateralToken)
	if err != nil {
		return nil, err
	}
	p.CollateralDecimals = decimals

	now := e.Now()
	var market *models.Market
	err = e.markets.DB().Transaction(func(tx *gorm.DB) error {
		m, err := e.markets.Create(tx, p, now)
		if err != nil {
			return err
		}
		market = m
		return e.appendEvent(tx, models.Event{
			MarketID: m.ID,
			Type:     models.EventMarketCreated,
			Actor:    creator,
			Amount:   p.B,
		})
	})
	if err != nil {
		return nil, err
	}
	return market, nil
}

// Status returns the market record.
func (e *Engine) Status(id int64) (*models.Market, error) {
	return e.markets.Get(e.markets.DB(), id)
}

// Prices returns the instantaneous YES and NO wad prices, each clamped to
// the open unit interval.
func (e *Engine) Prices(id int64) (priceYes, priceNo *big.Int, err error) {
	m, err := e.markets.Get(e.markets.DB(), id)
	if err != nil {
		return nil, nil, err
	}
	maker, err := makerFor(m)
	if err != nil {
		return nil, nil, err
	}
	priceYes, err = maker.PriceYes(m.QYes.Big(), m.QNo.Big())
	if err != nil {
		return nil, nil, err
	}
	priceNo, err = maker.PriceNo(m.QYes.Big(), m.QNo.Big())
	if err != nil {
		return nil, nil, err
	}
	return priceYes, priceNo, nil
}

func validateTradeShape(side models.Side, shares *big.Int) error {
	if !side.Valid() {
		return fmt.Errorf("%w: side must be YES or NO", ledger.ErrInvalidParameter)
	}
	if shares == nil || shares.Sign() <= 0 {
		return fmt.Errorf("%w: share amount must be positive", ledger.ErrInvalidParameter)
	}
	return nil
}

// QuoteBuy prices a buy of shares on one side: raw cost, fee and total
// debit. It mutates nothing and mirrors ExecuteBuy's math exactly.
func (e *Engine) QuoteBuy(id int64, side models.Side, shares *big.Int) (*Quote, error) {
	if err := validateTradeShape(side, shares); err != nil {
		return nil, err
	}
	m, err := e.markets.Get(e.markets.DB(), id)
	if err != nil {
		return nil, err
	}
	if err := e.markets.RequireOpen(m, e.Now()); err != nil {
		return nil, err
	}
	return e.priceBuy(m, side, shares)
}

func (e *Engine) priceBuy(m *models.Market, side models.Side, shares *big.Int) (*Quote, error) {
	maker, err := makerFor(m)
	if err != nil {
		return nil, err
	}
	cost, err := maker.CostToBuy(m.QYes.Big(), m.QNo.Big(), shares, side == models.SideYes)
	if err != nil {
		return nil, err
	}
	if cost.Sign() == 0 {
		return nil, fmt.Errorf("%w: cost rounds to zero", ledger.ErrInvalidParameter)
	}
	fee := e.fee(cost)
	total := new(big.Int).Add(cost, fee)
	return &Quote{
		MarketID: m.ID,
		Side:     side,
		Shares:   models.WadFrom(shares),
		Raw:      models.WadFrom(cost),
		Fee:      models.WadFrom(fee),
		Total:    models.WadFrom(total),
	}, nil
}

// QuoteSell prices a sale of shares on one side: gross payout, fee and net
// credit. Sell quotes stay available while the market is open and require
// the quantity not to exceed the side's outstanding inventory.
func (e *Engine) QuoteSell(id int64, side models.Side, shares *big.Int) (*Quote, error) {
	if err := validateTradeShape(side, shares); err != nil {
		return nil, err
	}
	m, err := e.markets.Get(e.markets.DB(), id)
	if err != nil {
		return nil, err
	}
	if err := e.markets.RequireOpen(m, e.Now()); err != nil {
		return nil, err
	}
	return e.priceSell(m, side, shares)
}

func (e *Engine) priceSell(m *models.Market, side models.Side, shares *big.Int) (*Quote, error) {
	inventory := m.QYes.Big()
	if side == models.SideNo {
		inventory = m.QNo.Big()
	}
	if shares.Cmp(inventory) > 0 {
		return nil, fmt.Errorf("%w: market %d has %s on side %s", ErrInsufficientInventory, m.ID, inventory, side)
	}
	maker, err := makerFor(m)
	if err != nil {
		return nil, err
	}
	gross, err := maker.CostToSell(m.QYes.Big(), m.QNo.Big(), shares, side == models.SideYes)
	if err != nil {
		return nil, err
	}
	if gross.Sign() == 0 {
		return nil, fmt.Errorf("%w: payout rounds to zero", ledger.ErrInvalidParameter)
	}
	fee := e.fee(gross)
	net := new(big.Int).Sub(gross, fee)
	return &Quote{
		MarketID: m.ID,
		Side:     side,
		Shares:   models.WadFrom(shares),
		Raw:      models.WadFrom(gross),
		Fee:      models.WadFrom(fee),
		Total:    models.WadFrom(net),
	}, nil
}

// ExecuteBuy buys shares on one side, failing if the fee-inclusive total
// exceeds maxTotal. Collateral debit, fee routing, inventory update and mint
// land atomically or not at all.
func (e *Engine) ExecuteBuy(trader string, id int64, side models.Side, shares, maxTotal *big.Int) (*Receipt, error) {
	if err := validateTradeShape(side, shares); err != nil {
		return nil, err
	}
	if maxTotal == nil || maxTotal.Sign() < 0 {
		return nil, fmt.Errorf("%w: max total is required", ledger.ErrInvalidParameter)
	}
	if e.markets.Paused() {
		return nil, ErrPaused
	}

	unlock := e.markets.Lock(id)
	defer unlock()

	now := e.Now()
	var receipt *Receipt
	err := e.markets.DB().Transaction(func(tx *gorm.DB) error {
		m, err := e.markets.Get(tx, id)
		if err != nil {
			return err
		}
		if err := e.markets.RequireOpen(m, now); err != nil {
			return err
		}
		quote, err := e.priceBuy(m, side, shares)
		if err != nil {
			return err
		}
		total := quote.Total.Big()
		if total.Cmp(maxTotal) > 0 {
			return fmt.Errorf("%w: total %s exceeds max %s", ErrSlippageExceeded, total, maxTotal)
		}
		receipt, err = e.applyBuy(tx, m, trader, side, shares, quote)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ExecuteBuyForBudget solves the largest share quantity whose cost fits the
// budget, then buys it. The solved quantity may be solver-capped rather than
// exact, so the cost is re-derived and re-checked against the budget before
// any state changes. The fee is charged on top of the budget-bounded cost.
func (e *Engine) ExecuteBuyForBudget(trader string, id int64, side models.Side, budget, minShares *big.Int) (*Receipt, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: side must be YES or NO", ledger.ErrInvalidParameter)
	}
	if budget == nil || budget.Sign() <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", ledger.ErrInvalidParameter)
	}
	if minShares == nil || minShares.Sign() < 0 {
		return nil, fmt.Errorf("%w: min shares is required", ledger.ErrInvalidParameter)
	}
	if e.markets.Paused() {
		return nil, ErrPaused
	}

	unlock := e.markets.Lock(id)
	defer unlock()

	now := e.Now()
	var receipt *Receipt
	err := e.markets.DB().Transaction(func(tx *gorm.DB) error {
		m, err := e.markets.Get(tx, id)
		if err != nil {
			return err
		}
		if err := e.markets.RequireOpen(m, now); err != nil {
			return err
		}
		maker, err := makerFor(m)
		if err != nil {
			return err
		}
		shares, err := maker.SharesForSpend(m.QYes.Big(), m.QNo.Big(), budget, side == models.SideYes)
		if err != nil {
			return err
		}
		if shares.Cmp(minShares) < 0 {
			return fmt.Errorf("%w: solved %s shares below min %s", ErrSlippageExceeded, shares, minShares)
		}
		if shares.Sign() == 0 {
			return fmt.Errorf("%w: budget buys zero shares", ledger.ErrInvalidParameter)
		}
		quote, err := e.priceBuy(m, side, shares)
		if err != nil {
			return err
		}
		if quote.Raw.Big().Cmp(budget) > 0 {
			return fmt.Errorf("%w: solved cost %s exceeds budget %s", ErrSlippageExceeded, quote.Raw.Big(), budget)
		}
		receipt, err = e.applyBuy(tx, m, trader, side, shares, quote)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (e *Engine) applyBuy(tx *gorm.DB, m *models.Market, trader string, side models.Side, shares *big.Int, quote *Quote) (*Receipt, error) {
	cost := quote.Raw.Big()
	fee := quote.Fee.Big()
	total := quote.Total.Big()

	if err := e.collateral.TransferIn(tx, trader, m.CollateralToken, ledger.ToToken(total, m.CollateralDecimals)); err != nil {
		return nil, err
	}
	if fee.Sign() > 0 {
		if err := e.collateral.TransferOut(tx, e.cfg.FeeRecipient, m.CollateralToken, ledger.ToToken(fee, m.CollateralDecimals)); err != nil {
			return nil, err
		}
	}

	if side == models.SideYes {
		m.QYes = models.WadFrom(new(big.Int).Add(m.QYes.Big(), shares))
	} else {
		m.QNo = models.WadFrom(new(big.Int).Add(m.QNo.Big(), shares))
	}
	if err := tx.Save(m).Error; err != nil {
		return nil, err
	}

	if err := e.shares.Mint(tx, trader, models.ShareID(m.ID, side), shares); err != nil {
		return nil, err
	}

	if err := e.appendEvent(tx, models.Event{
		MarketID: m.ID,
		Type:     models.EventBought,
		Actor:    trader,
		Side:     string(side),
		Shares:   models.WadFrom(shares),
		Amount:   models.WadFrom(cost),
		Fee:      models.WadFrom(fee),
	}); err != nil {
		return nil, err
	}
	if fee.Sign() > 0 {
		if err := e.appendEvent(tx, models.Event{
			MarketID: m.ID,
			Type:     models.EventFeeCollected,
			Actor:    e.cfg.FeeRecipient,
			Amount:   models.WadFrom(fee),
		}); err != nil {
			return nil, err
		}
	}

	return &Receipt{
		MarketID: m.ID,
		Side:     side,
		Shares:   models.WadFrom(shares),
		Raw:      models.WadFrom(cost),
		Fee:      models.WadFrom(fee),
		Total:    models.WadFrom(total),
	}, nil
}

// ExecuteSell sells shares back to the maker, failing if the net payout
// after fee falls below minNet. The caller must hold the shares being sold.
func (e *Engine) ExecuteSell(trader string, id int64, side models.Side, shares, minNet *big.Int) (*Receipt, error) {
	if err := validateTradeShape(side, shares); err != nil {
		return nil, err
	}
	if minNet == nil || minNet.Sign() < 0 {
		return nil, fmt.Errorf("%w: min net is required", ledger.ErrInvalidParameter)
	}
	if e.markets.Paused() {
		return nil, ErrPaused
	}

	unlock := e.markets.Lock(id)
	defer unlock()

	now := e.Now()
	var receipt *Receipt
	err := e.markets.DB().Transaction(func(tx *gorm.DB) error {
		m, err := e.markets.Get(tx, id)
		if err != nil {
			return err
		}
		if err := e.markets.RequireOpen(m, now); err != nil {
			return err
		}

		shareID := models.ShareID(m.ID, side)
		held, err := e.shares.BalanceOf(tx, trader, shareID)
		if err != nil {
			return err
		}
		if held.Cmp(shares) < 0 {
			return fmt.Errorf("%w: %s holds %s of side %s", ledger.ErrInsufficientBalance, trader, held, side)
		}

		quote, err := e.priceSell(m, side, shares)
		if err != nil {
			return err
		}
		gross := quote.Raw.Big()
		fee := quote.Fee.Big()
		net := quote.Total.Big()
		if net.Cmp(minNet) < 0 {
			return fmt.Errorf("%w: net %s below min %s", ErrSlippageExceeded, net, minNet)
		}

		if err := e.shares.Burn(tx, trader, shareID, shares); err != nil {
			return err
		}
		if side == models.SideYes {
			m.QYes = models.WadFrom(new(big.Int).Sub(m.QYes.Big(), shares))
		} else {
			m.QNo = models.WadFrom(new(big.Int).Sub(m.QNo.Big(), shares))
		}
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		if err := e.collateral.TransferOut(tx, trader, m.CollateralToken, ledger.ToToken(net, m.CollateralDecimals)); err != nil {
			return err
		}
		if fee.Sign() > 0 {
			if err := e.collateral.TransferOut(tx, e.cfg.FeeRecipient, m.CollateralToken, ledger.ToToken(fee, m.CollateralDecimals)); err != nil {
				return err
			}
		}

		if err := e.appendEvent(tx, models.Event{
			MarketID: m.ID,
			Type:     models.EventSold,
			Actor:    trader,
			Side:     string(side),
			Shares:   models.WadFrom(shares),
			Amount:   models.WadFrom(gross),
			Fee:      models.WadFrom(fee),
		}); err != nil {
			return err
		}
		if fee.Sign() > 0 {
			if err := e.appendEvent(tx, models.Event{
				MarketID: m.ID,
				Type:     models.EventFeeCollected,
				Actor:    e.cfg.FeeRecipient,
				Amount:   models.WadFrom(fee),
			}); err != nil {
				return err
			}
		}

		receipt = &Receipt{
			MarketID: m.ID,
			Side:     side,
			Shares:   models.WadFrom(shares),
			Raw:      models.WadFrom(gross),
			Fee:      models.WadFrom(fee),
			Total:    models.WadFrom(net),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Events lists a market's event log, newest first.
func (e *Engine) Events(id int64, limit, offset int) ([]models.Event, error) {
	if _, err := e.markets.Get(e.markets.DB(), id); err != nil {
		return nil, err
	}
	var events []models.Event
	result := e.markets.DB().
		Where("market_id = ?", id).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}
	return events, nil
}

// Pause blocks execute paths. The signal is external to the core; quotes and
// reads keep working.
func (e *Engine) Pause() { e.markets.Pause() }

// Resume re-enables execute paths.
func (e *Engine) Resume() { e.markets.Resume() }
