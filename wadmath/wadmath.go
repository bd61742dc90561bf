// Package wadmath implements unsigned fixed-point decimal arithmetic at wad
// scale: every value represents a real number multiplied by 1e18.
//
// All operations truncate toward zero and fail deterministically instead of
// wrapping: results must fit in 256 bits, inputs must be non-negative, and
// Ln is only defined for inputs of at least one wad (its result would be
// negative below that, which an unsigned representation cannot carry).
//
// Every scale conversion in the repository goes through this package or
// through ledger's token-precision helpers; nothing else is allowed to do
// ad hoc 1e18 arithmetic.
package wadmath

import (
	"errors"
	"math/big"
)

var (
	// ErrOverflow is returned when a result would exceed 256 bits, or when
	// Exp is called above MaxExpInput.
	ErrOverflow = errors.New("wadmath: arithmetic overflow")
	// ErrDomain is returned for negative inputs, division by zero, and Ln
	// arguments below one wad.
	ErrDomain = errors.New("wadmath: input out of domain")
)

var (
	// WAD is the fixed-point scale, 1e18.
	WAD = big.NewInt(1_000_000_000_000_000_000)

	// TwoWAD is 2.0 in wad scale.
	TwoWAD = new(big.Int).Lsh(WAD, 1)

	// LN2 is the natural logarithm of two in wad scale, truncated.
	LN2 = mustBig("693147180559945309")

	// MaxExpInput is the largest argument Exp accepts. exp(130) in wad scale
	// is around 2^247, comfortably inside 256 bits; callers are required to
	// clamp (or short-circuit) before calling Exp with anything larger.
	MaxExpInput = mustBig("130000000000000000000")

	one = big.NewInt(1)
	two = big.NewInt(2)
)

const maxBits = 256

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("wadmath: bad constant " + s)
	}
	return v
}

// FromInt returns n whole units as a wad value. n must be non-negative.
func FromInt(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), WAD)
}

func checkOperands(xs ...*big.Int) error {
	for _, x := range xs {
		if x == nil || x.Sign() < 0 || x.BitLen() > maxBits {
			return ErrDomain
		}
	}
	return nil
}

// Mul returns x*y at wad scale, truncating toward zero.
func Mul(x, y *big.Int) (*big.Int, error) {
	if err := checkOperands(x, y); err != nil {
		return nil, err
	}
	z := new(big.Int).Mul(x, y)
	z.Quo(z, WAD)
	if z.BitLen() > maxBits {
		return nil, ErrOverflow
	}
	return z, nil
}

// Div returns x/y at wad scale, truncating toward zero. y must be non-zero.
func Div(x, y *big.Int) (*big.Int, error) {
	if err := checkOperands(x, y); err != nil {
		return nil, err
	}
	if y.Sign() == 0 {
		return nil, ErrDomain
	}
	z := new(big.Int).Mul(x, WAD)
	z.Quo(z, y)
	if z.BitLen() > maxBits {
		return nil, ErrOverflow
	}
	return z, nil
}

// Exp returns e**x at wad scale for x in [0, MaxExpInput].
//
// The argument is split as x = k*ln2 + r with r in [0, ln2); e**r is summed
// as a truncated Taylor series and the result shifted left by k. Terms vanish
// in integer arithmetic, so the loop is bounded.
func Exp(x *big.Int) (*big.Int, error) {
	if err := checkOperands(x); err != nil {
		return nil, err
	}
	if x.Cmp(MaxExpInput) > 0 {
		return nil, ErrOverflow
	}

	k := new(big.Int).Quo(x, LN2)
	r := new(big.Int).Sub(x, new(big.Int).Mul(k, LN2))

	sum := new(big.Int).Set(WAD)
	term := new(big.Int).Set(WAD)
	for n := int64(1); n <= 64; n++ {
		term.Mul(term, r)
		term.Quo(term, new(big.Int).Mul(WAD, big.NewInt(n)))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}

	z := new(big.Int).Lsh(sum, uint(k.Uint64()))
	if z.BitLen() > maxBits {
		return nil, ErrOverflow
	}
	return z, nil
}

// Ln returns the natural logarithm of x at wad scale for x >= 1 wad.
//
// x is reduced by halving to m in [1, 2) so that ln(x) = k*ln2 + ln(m), and
// ln(m) comes from the atanh series 2*(y + y^3/3 + y^5/5 + ...) with
// y = (m-1)/(m+1) <= 1/3. Powers of y vanish in integer arithmetic, so the
// loop is bounded.
func Ln(x *big.Int) (*big.Int, error) {
	if err := checkOperands(x); err != nil {
		return nil, err
	}
	if x.Cmp(WAD) < 0 {
		return nil, ErrDomain
	}

	m := new(big.Int).Set(x)
	k := int64(0)
	for m.Cmp(TwoWAD) >= 0 {
		m.Rsh(m, 1)
		k++
	}

	num := new(big.Int).Sub(m, WAD)
	den := new(big.Int).Add(m, WAD)
	y := num.Mul(num, WAD)
	y.Quo(y, den)

	ysq := new(big.Int).Mul(y, y)
	ysq.Quo(ysq, WAD)

	sum := new(big.Int).Set(y)
	pow := new(big.Int).Set(y)
	for n := int64(3); n <= 121; n += 2 {
		pow.Mul(pow, ysq)
		pow.Quo(pow, WAD)
		if pow.Sign() == 0 {
			break
		}
		sum.Add(sum, new(big.Int).Quo(pow, big.NewInt(n)))
	}
	sum.Mul(sum, two)

	sum.Add(sum, new(big.Int).Mul(big.NewInt(k), LN2))
	return sum, nil
}
