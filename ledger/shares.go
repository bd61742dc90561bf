package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"predex/models"
)

// ShareLedger is the external outcome-share ledger. The core only mints,
// burns and reads balances; ownership bookkeeping beyond that is not its
// concern.
type ShareLedger interface {
	Mint(tx *gorm.DB, to string, shareID uint64, amount *big.Int) error
	Burn(tx *gorm.DB, from string, shareID uint64, amount *big.Int) error
	BalanceOf(tx *gorm.DB, who string, shareID uint64) (*big.Int, error)
}

// GormShares is the reference ShareLedger over the share_balances table.
type GormShares struct{}

// NewGormShares builds the reference share ledger.
func NewGormShares() *GormShares {
	return &GormShares{}
}

// Mint credits amount of a share to the holder, creating the row if absent.
func (s *GormShares) Mint(tx *gorm.DB, to string, shareID uint64, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", ErrInvalidParameter)
	}
	var row models.ShareBalance
	result := tx.Where("address = ? AND share_id = ?", to, shareID).First(&row)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		row = models.ShareBalance{Address: to, ShareID: shareID}
	}
	balance := row.Balance.Big()
	row.Balance = models.WadFrom(balance.Add(balance, amount))
	return tx.Save(&row).Error
}

// Burn debits amount of a share from the holder.
func (s *GormShares) Burn(tx *gorm.DB, from string, shareID uint64, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: burn amount must be positive", ErrInvalidParameter)
	}
	var row models.ShareBalance
	result := tx.Where("address = ? AND share_id = ?", from, shareID).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s holds no share %d", ErrInsufficientBalance, from, shareID)
		}
		return result.Error
	}
	balance := row.Balance.Big()
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s of share %d, needs %s", ErrInsufficientBalance, from, balance, shareID, amount)
	}
	row.Balance = models.WadFrom(balance.Sub(balance, amount))
	return tx.Save(&row).Error
}

// BalanceOf reads the holder's share balance; absent rows are zero.
func (s *GormShares) BalanceOf(tx *gorm.DB, who string, shareID uint64) (*big.Int, error) {
	var row models.ShareBalance
	result := tx.Where("address = ? AND share_id = ?", who, shareID).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, result.Error
	}
	return row.Balance.Big(), nil
}
