package models

import "gorm.io/gorm"

// CollateralAccount is the reference implementation of the external value
// ledger: one row per (address, token), balance held at the token's native
// precision. Production deployments swap this for real custody behind the
// ledger.CollateralLedger interface.
type CollateralAccount struct {
	gorm.Model
	Address string `json:"address" gorm:"not null;uniqueIndex:idx_collateral_addr_token"`
	Token   string `json:"token" gorm:"not null;uniqueIndex:idx_collateral_addr_token"`
	Balance Wad    `json:"balance"`
}

// ShareBalance is the reference implementation of the external share ledger:
// one row per (address, share id), wad-denominated.
type ShareBalance struct {
	gorm.Model
	Address string `json:"address" gorm:"not null;uniqueIndex:idx_share_addr_id"`
	ShareID uint64 `json:"shareId" gorm:"not null;uniqueIndex:idx_share_addr_id"`
	Balance Wad    `json:"balance"`
}
