package lmsr

import (
	"errors"
	"math/big"

	"predex/wadmath"
)

var (
	// ErrSpend is returned by SharesForSpend for a non-positive target.
	ErrSpend = errors.New("lmsr: target spend must be positive")

	// solverCap bounds the bracket expansion at 1e18 whole shares. When even
	// the capped quantity costs less than the target the cap itself is
	// returned as a best-effort result; the solver never searches unbounded
	// space. Callers needing exactness must re-derive the cost of the solved
	// quantity, as the trade engine does.
	solverCap = mustWad("1000000000000000000000000000000000000")
)

// bisectIters is the fixed bisection budget. 2^64 exceeds the initial
// one-share bracket in wei, so the bracket always collapses to a single wei
// within budget.
const bisectIters = 64

func mustWad(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("lmsr: bad constant " + s)
	}
	return v
}

// SharesForSpend finds the largest share quantity of one side whose buy cost
// does not exceed target, by exponential bracket expansion followed by
// bisection. It is a pure function of its arguments.
//
// The returned quantity delta satisfies cost(delta) <= target, and unless the
// solver cap was hit, cost(delta + 1 wei) > target.
func (l *LMSR) SharesForSpend(qYes, qNo, target *big.Int, yes bool) (*big.Int, error) {
	if target == nil || target.Sign() <= 0 {
		return nil, ErrSpend
	}

	base, err := l.Cost(qYes, qNo)
	if err != nil {
		return nil, err
	}
	costAt := func(delta *big.Int) (*big.Int, error) {
		var after *big.Int
		var err error
		if yes {
			after, err = l.Cost(new(big.Int).Add(qYes, delta), qNo)
		} else {
			after, err = l.Cost(qYes, new(big.Int).Add(qNo, delta))
		}
		if err != nil {
			return nil, err
		}
		diff := after.Sub(after, base)
		if diff.Sign() < 0 {
			diff.SetInt64(0)
		}
		return diff, nil
	}

	// Expand the bracket from one share until the cost reaches the target or
	// the cap is hit.
	hi := new(big.Int).Set(wadmath.WAD)
	for {
		c, err := costAt(hi)
		if err != nil {
			return nil, err
		}
		if c.Cmp(target) >= 0 {
			if c.Cmp(target) == 0 {
				return hi, nil
			}
			break
		}
		if hi.Cmp(solverCap) >= 0 {
			return hi, nil
		}
		hi.Lsh(hi, 1)
		if hi.Cmp(solverCap) > 0 {
			hi.Set(solverCap)
		}
	}

	// Invariant: cost(lo) <= target < cost(hi).
	lo := big.NewInt(0)
	one := big.NewInt(1)
	for i := 0; i < bisectIters; i++ {
		width := new(big.Int).Sub(hi, lo)
		if width.Cmp(one) <= 0 {
			break
		}
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		c, err := costAt(mid)
		if err != nil {
			return nil, err
		}
		if c.Cmp(target) <= 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}
