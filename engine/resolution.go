package engine

import (
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"predex/ledger"
	"predex/models"
)

// Resolve finalizes a market's outcome. Only the market's oracle may call
// it, only while the market is undecided, and only to a terminal outcome.
// The transition is irreversible.
func (e *Engine) Resolve(caller string, id int64, outcome models.Outcome) error {
	if !outcome.Terminal() {
		return fmt.Errorf("%w: outcome must be YES, NO or INVALID", ledger.ErrInvalidParameter)
	}

	unlock := e.markets.Lock(id)
	defer unlock()

	now := e.Now()
	return e.markets.DB().Transaction(func(tx *gorm.DB) error {
		m, err := e.markets.Get(tx, id)
		if err != nil {
			return err
		}
		if caller != m.Oracle {
			return fmt.Errorf("%w: market %d oracle is %s", ErrUnauthorized, id, m.Oracle)
		}
		if m.Outcome != models.OutcomeUndecided {
			return fmt.Errorf("%w: market %d resolved %s", ledger.ErrAlreadyResolved, id, m.Outcome)
		}

		m.Outcome = outcome
		m.ResolvedAt = &now
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		return e.appendEvent(tx, models.Event{
			MarketID: m.ID,
			Type:     models.EventResolved,
			Actor:    caller,
			Outcome:  string(outcome),
		})
	})
}

// Redeem settles the caller's position on a resolved market. Winning shares
// pay one collateral unit per share; an invalid outcome refunds the residual
// pool proportionally across all outstanding shares. All of the caller's
// relevant shares are burned. Inventory counters are untouched: they move
// only through trades, and later redeemers see the same pool ratio.
func (e *Engine) Redeem(caller string, id int64) (*Receipt, error) {
	unlock := e.markets.Lock(id)
	defer unlock()

	var receipt *Receipt
	err := e.markets.DB().Transaction(func(tx *gorm.DB) error {
		m, err := e.markets.Get(tx, id)
		if err != nil {
			return err
		}
		if err := e.markets.RequireResolved(m); err != nil {
			return err
		}

		switch m.Outcome {
		case models.OutcomeYes:
			receipt, err = e.redeemWinning(tx, m, caller, models.SideYes)
		case models.OutcomeNo:
			receipt, err = e.redeemWinning(tx, m, caller, models.SideNo)
		case models.OutcomeInvalid:
			receipt, err = e.redeemInvalid(tx, m, caller)
		case models.OutcomeUndecided:
			err = fmt.Errorf("%w: market %d", ledger.ErrNotResolved, id)
		default:
			err = fmt.Errorf("%w: unknown outcome %q", ledger.ErrInvalidParameter, m.Outcome)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (e *Engine) redeemWinning(tx *gorm.DB, m *models.Market, caller string, side models.Side) (*Receipt, error) {
	shareID := models.ShareID(m.ID, side)
	held, err := e.shares.BalanceOf(tx, caller, shareID)
	if err != nil {
		return nil, err
	}
	if held.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s holds no %s shares of market %d", ledger.ErrInsufficientBalance, caller, side, m.ID)
	}
	if err := e.shares.Burn(tx, caller, shareID, held); err != nil {
		return nil, err
	}

	// One wad of collateral per winning share.
	payout := new(big.Int).Set(held)
	if err := e.collateral.TransferOut(tx, caller, m.CollateralToken, ledger.ToToken(payout, m.CollateralDecimals)); err != nil {
		return nil, err
	}
	if err := e.appendEvent(tx, models.Event{
		MarketID: m.ID,
		Type:     models.EventRedeemed,
		Actor:    caller,
		Side:     string(side),
		Outcome:  string(m.Outcome),
		Shares:   models.WadFrom(held),
		Amount:   models.WadFrom(payout),
	}); err != nil {
		return nil, err
	}
	return &Receipt{
		MarketID: m.ID,
		Side:     side,
		Shares:   models.WadFrom(held),
		Raw:      models.WadFrom(payout),
		Total:    models.WadFrom(payout),
	}, nil
}

func (e *Engine) redeemInvalid(tx *gorm.DB, m *models.Market, caller string) (*Receipt, error) {
	yesID := models.ShareID(m.ID, models.SideYes)
	noID := models.ShareID(m.ID, models.SideNo)
	yesHeld, err := e.shares.BalanceOf(tx, caller, yesID)
	if err != nil {
		return nil, err
	}
	noHeld, err := e.shares.BalanceOf(tx, caller, noID)
	if err != nil {
		return nil, err
	}
	held := new(big.Int).Add(yesHeld, noHeld)
	if held.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s holds no shares of market %d", ledger.ErrInsufficientBalance, caller, m.ID)
	}

	outstanding := new(big.Int).Add(m.QYes.Big(), m.QNo.Big())
	if outstanding.Sign() == 0 {
		return nil, fmt.Errorf("%w: market %d has no outstanding shares", ErrInsufficientInventory, m.ID)
	}

	maker, err := makerFor(m)
	if err != nil {
		return nil, err
	}
	pool, err := maker.ResidualPool(m.QYes.Big(), m.QNo.Big())
	if err != nil {
		return nil, err
	}

	// Proportional refund: held * pool / outstanding, truncating. Truncation
	// keeps the sum of all refunds within the pool.
	payout := new(big.Int).Mul(held, pool)
	payout.Quo(payout, outstanding)

	if yesHeld.Sign() > 0 {
		if err := e.shares.Burn(tx, caller, yesID, yesHeld); err != nil {
			return nil, err
		}
	}
	if noHeld.Sign() > 0 {
		if err := e.shares.Burn(tx, caller, noID, noHeld); err != nil {
			return nil, err
		}
	}
	if payout.Sign() > 0 {
		if err := e.collateral.TransferOut(tx, caller, m.CollateralToken, ledger.ToToken(payout, m.CollateralDecimals)); err != nil {
			return nil, err
		}
	}
	if err := e.appendEvent(tx, models.Event{
		MarketID: m.ID,
		Type:     models.EventRedeemed,
		Actor:    caller,
		Outcome:  string(models.OutcomeInvalid),
		Shares:   models.WadFrom(held),
		Amount:   models.WadFrom(payout),
	}); err != nil {
		return nil, err
	}
	return &Receipt{
		MarketID: m.ID,
		Shares:   models.WadFrom(held),
		Raw:      models.WadFrom(payout),
		Total:    models.WadFrom(payout),
	}, nil
}
