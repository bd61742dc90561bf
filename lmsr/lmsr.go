// Package lmsr implements the Logarithmic Market Scoring Rule (LMSR)
// market maker for binary outcomes, in wad fixed point.
//
// LMSR provides:
// - Bounded loss for the market maker (max loss = b * ln(2) for two outcomes)
// - Always available liquidity
// - Price = probability interpretation
// - A well-defined convex cost function
//
// Reference: "Logarithmic Market Scoring Rules for Modular Combinatorial
// Information Aggregation", Robin Hanson, 2003.
package lmsr

import (
	"errors"
	"math/big"

	"predex/wadmath"
)

var (
	// ErrLiquidity is returned by New for a non-positive liquidity parameter.
	ErrLiquidity = errors.New("lmsr: liquidity parameter must be positive")
	// ErrShares is returned for non-positive or out-of-range share deltas.
	ErrShares = errors.New("lmsr: invalid share quantity")
)

// LMSR prices a single binary market. B is the liquidity parameter in wad:
// higher B means flatter prices and more potential maker loss.
type LMSR struct {
	B *big.Int
}

// New creates a market maker with the given wad liquidity parameter.
func New(b *big.Int) (*LMSR, error) {
	if b == nil || b.Sign() <= 0 {
		return nil, ErrLiquidity
	}
	return &LMSR{B: new(big.Int).Set(b)}, nil
}

// exposure returns lead = max(qYes,qNo)/b, delta = |qYes-qNo|/b and whether
// YES is the leading side. Working with the normalized lead and gap keeps
// every exponential argument small enough to evaluate.
func (l *LMSR) exposure(qYes, qNo *big.Int) (lead, delta *big.Int, yesLeads bool, err error) {
	a, err := wadmath.Div(qYes, l.B)
	if err != nil {
		return nil, nil, false, err
	}
	c, err := wadmath.Div(qNo, l.B)
	if err != nil {
		return nil, nil, false, err
	}
	if a.Cmp(c) >= 0 {
		return a, new(big.Int).Sub(a, c), true, nil
	}
	return c, new(big.Int).Sub(c, a), false, nil
}

// Cost evaluates C(qYes, qNo) = b * ln(exp(qYes/b) + exp(qNo/b)) using the
// log-sum-exp identity: with lead m and gap d, C = b*(m + ln(1 + exp(-d))).
// Once the gap exceeds the safe exponent bound exp(-d) is identically zero at
// wad granularity and the cost collapses to b*m exactly.
func (l *LMSR) Cost(qYes, qNo *big.Int) (*big.Int, error) {
	lead, delta, _, err := l.exposure(qYes, qNo)
	if err != nil {
		return nil, err
	}
	if delta.Cmp(wadmath.MaxExpInput) >= 0 {
		return wadmath.Mul(l.B, lead)
	}
	expDelta, err := wadmath.Exp(delta)
	if err != nil {
		return nil, err
	}
	expNeg, err := wadmath.Div(wadmath.WAD, expDelta)
	if err != nil {
		return nil, err
	}
	inner := new(big.Int).Add(wadmath.WAD, expNeg)
	lnInner, err := wadmath.Ln(inner)
	if err != nil {
		return nil, err
	}
	return wadmath.Mul(l.B, new(big.Int).Add(lead, lnInner))
}

// PriceYes returns the instantaneous YES price as a wad probability, clamped
// to the open interval (0, 1): a saturated market reports one wei away from
// the boundary, never exactly 0 or 1.
func (l *LMSR) PriceYes(qYes, qNo *big.Int) (*big.Int, error) {
	_, delta, yesLeads, err := l.exposure(qYes, qNo)
	if err != nil {
		return nil, err
	}
	if delta.Cmp(wadmath.MaxExpInput) >= 0 {
		if yesLeads {
			return new(big.Int).Sub(wadmath.WAD, big.NewInt(1)), nil
		}
		return big.NewInt(1), nil
	}
	expDelta, err := wadmath.Exp(delta)
	if err != nil {
		return nil, err
	}
	den := new(big.Int).Add(wadmath.WAD, expDelta)
	var p *big.Int
	if yesLeads {
		p, err = wadmath.Div(expDelta, den)
	} else {
		p, err = wadmath.Div(wadmath.WAD, den)
	}
	if err != nil {
		return nil, err
	}
	return clampPrice(p), nil
}

// PriceNo returns the NO price, the wad complement of PriceYes with the same
// open-interval clamp.
func (l *LMSR) PriceNo(qYes, qNo *big.Int) (*big.Int, error) {
	p, err := l.PriceYes(qYes, qNo)
	if err != nil {
		return nil, err
	}
	return clampPrice(new(big.Int).Sub(wadmath.WAD, p)), nil
}

func clampPrice(p *big.Int) *big.Int {
	min := big.NewInt(1)
	max := new(big.Int).Sub(wadmath.WAD, big.NewInt(1))
	if p.Cmp(min) < 0 {
		return min
	}
	if p.Cmp(max) > 0 {
		return max
	}
	return p
}

// CostToBuy returns the collateral cost of buying shares of one side:
// C(q+delta) - C(q). Convexity keeps this non-negative; a negative wei-level
// artifact of truncation is floored at zero.
func (l *LMSR) CostToBuy(qYes, qNo, shares *big.Int, yes bool) (*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrShares
	}
	before, err := l.Cost(qYes, qNo)
	if err != nil {
		return nil, err
	}
	var after *big.Int
	if yes {
		after, err = l.Cost(new(big.Int).Add(qYes, shares), qNo)
	} else {
		after, err = l.Cost(qYes, new(big.Int).Add(qNo, shares))
	}
	if err != nil {
		return nil, err
	}
	diff := after.Sub(after, before)
	if diff.Sign() < 0 {
		diff.SetInt64(0)
	}
	return diff, nil
}

// CostToSell returns the collateral paid out when selling shares back:
// C(q) - C(q-delta). shares must not exceed the side's inventory.
func (l *LMSR) CostToSell(qYes, qNo, shares *big.Int, yes bool) (*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrShares
	}
	side := qYes
	if !yes {
		side = qNo
	}
	if shares.Cmp(side) > 0 {
		return nil, ErrShares
	}
	before, err := l.Cost(qYes, qNo)
	if err != nil {
		return nil, err
	}
	var after *big.Int
	if yes {
		after, err = l.Cost(new(big.Int).Sub(qYes, shares), qNo)
	} else {
		after, err = l.Cost(qYes, new(big.Int).Sub(qNo, shares))
	}
	if err != nil {
		return nil, err
	}
	diff := before.Sub(before, after)
	if diff.Sign() < 0 {
		diff.SetInt64(0)
	}
	return diff, nil
}

// ResidualPool is the collateral left backing the market beyond the maker's
// initial subsidy: C(qYes, qNo) - b*ln(2). The subsidy constant must stay
// exactly b*ln(2), the cost function's value at zero net exposure; changing
// it would change invalid-outcome payout totals.
func (l *LMSR) ResidualPool(qYes, qNo *big.Int) (*big.Int, error) {
	cost, err := l.Cost(qYes, qNo)
	if err != nil {
		return nil, err
	}
	ln2, err := wadmath.Ln(wadmath.TwoWAD)
	if err != nil {
		return nil, err
	}
	subsidy, err := wadmath.Mul(l.B, ln2)
	if err != nil {
		return nil, err
	}
	pool := cost.Sub(cost, subsidy)
	if pool.Sign() < 0 {
		pool.SetInt64(0)
	}
	return pool, nil
}

// MaxLoss returns the maximum possible maker loss, b*ln(2) for a binary
// market.
func (l *LMSR) MaxLoss() (*big.Int, error) {
	ln2, err := wadmath.Ln(wadmath.TwoWAD)
	if err != nil {
		return nil, err
	}
	return wadmath.Mul(l.B, ln2)
}
