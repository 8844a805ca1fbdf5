package model

import "github.com/shopspring/decimal"

type WalletInfo struct {
	Address     string          `json:"address"`
	PRXBalance  decimal.Decimal `json:"prx_balance"`
	USDTBalance decimal.Decimal `json:"usdt_balance"`
}

// Balance returns the balance held in c.
func (w WalletInfo) Balance(c Currency) decimal.Decimal {
	if c == USDT {
		return w.USDTBalance
	}
	return w.PRXBalance
}
