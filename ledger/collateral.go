package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"predex/models"
)

// CollateralLedger is the external value ledger the core debits and credits.
// Amounts are at the token's native precision; the core converts from wad
// with ToToken/FromToken before calling.
type CollateralLedger interface {
	TransferIn(tx *gorm.DB, from, token string, amount *big.Int) error
	TransferOut(tx *gorm.DB, to, token string, amount *big.Int) error
	Decimals(token string) (int, error)
}

const wadDecimals = 18

// ToToken narrows a wad amount to a token's native precision, truncating any
// sub-precision dust. Widening is exact.
func ToToken(wad *big.Int, decimals int) *big.Int {
	out := new(big.Int).Set(wad)
	switch {
	case decimals < wadDecimals:
		out.Quo(out, pow10(wadDecimals-decimals))
	case decimals > wadDecimals:
		out.Mul(out, pow10(decimals-wadDecimals))
	}
	return out
}

// FromToken widens a native-precision amount to wad. Narrowing (tokens with
// more than 18 decimals) truncates.
func FromToken(native *big.Int, decimals int) *big.Int {
	out := new(big.Int).Set(native)
	switch {
	case decimals < wadDecimals:
		out.Mul(out, pow10(wadDecimals-decimals))
	case decimals > wadDecimals:
		out.Quo(out, pow10(decimals-wadDecimals))
	}
	return out
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// GormCollateral is the reference CollateralLedger over the
// collateral_accounts table. Decimals per token are registered at
// construction; unknown tokens default to 18.
type GormCollateral struct {
	decimals map[string]int
}

// NewGormCollateral builds the reference ledger with the given token
// precision registry. A nil map means every token is 18 decimals.
func NewGormCollateral(decimals map[string]int) *GormCollateral {
	if decimals == nil {
		decimals = make(map[string]int)
	}
	return &GormCollateral{decimals: decimals}
}

// Decimals reports a token's native precision.
func (c *GormCollateral) Decimals(token string) (int, error) {
	if d, ok := c.decimals[token]; ok {
		return d, nil
	}
	return wadDecimals, nil
}

// TransferIn debits amount from the holder's account.
func (c *GormCollateral) TransferIn(tx *gorm.DB, from, token string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: negative transfer", ErrInvalidParameter)
	}
	var account models.CollateralAccount
	result := tx.Where("address = ? AND token = ?", from, token).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no collateral account for %s", ErrInsufficientBalance, from)
		}
		return result.Error
	}
	balance := account.Balance.Big()
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from, balance, amount)
	}
	account.Balance = models.WadFrom(balance.Sub(balance, amount))
	return tx.Save(&account).Error
}

// TransferOut credits amount to the holder's account, creating it if absent.
func (c *GormCollateral) TransferOut(tx *gorm.DB, to, token string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: negative transfer", ErrInvalidParameter)
	}
	var account models.CollateralAccount
	result := tx.Where("address = ? AND token = ?", to, token).First(&account)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		account = models.CollateralAccount{Address: to, Token: token}
	}
	balance := account.Balance.Big()
	account.Balance = models.WadFrom(balance.Add(balance, amount))
	return tx.Save(&account).Error
}
