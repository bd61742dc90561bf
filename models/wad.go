package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Wad is a non-negative arbitrary-precision integer amount, wad-scaled (1e18)
// everywhere except collateral accounts which hold token-native precision.
// It persists as a decimal string so 256-bit values survive any database
// backend. Treat values as immutable: arithmetic happens on copies from Big.
type Wad struct {
	v big.Int
}

// WadFrom copies i into a Wad. A nil input is zero.
func WadFrom(i *big.Int) Wad {
	var w Wad
	if i != nil {
		w.v.Set(i)
	}
	return w
}

// Big returns a copy safe to mutate.
func (w *Wad) Big() *big.Int {
	return new(big.Int).Set(&w.v)
}

// Sign reports -1, 0 or +1 like big.Int.Sign.
func (w *Wad) Sign() int {
	return w.v.Sign()
}

func (w Wad) String() string {
	return w.v.String()
}

// Scan implements sql.Scanner.
func (w *Wad) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		w.v.SetInt64(0)
		return nil
	case int64:
		w.v.SetInt64(v)
		return nil
	case string:
		return w.setString(v)
	case []byte:
		return w.setString(string(v))
	default:
		return fmt.Errorf("wad: cannot scan %T", value)
	}
}

func (w *Wad) setString(s string) error {
	if s == "" {
		w.v.SetInt64(0)
		return nil
	}
	if _, ok := w.v.SetString(s, 10); !ok {
		return fmt.Errorf("wad: invalid decimal %q", s)
	}
	return nil
}

// Value implements driver.Valuer.
func (w Wad) Value() (driver.Value, error) {
	return w.v.String(), nil
}

// GormDataType stores wads as text columns.
func (Wad) GormDataType() string {
	return "text"
}

// MarshalJSON renders the wad as a quoted decimal string; 256-bit amounts do
// not fit JSON numbers.
func (w Wad) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.v.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal.
func (w *Wad) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	return w.setString(s)
}
