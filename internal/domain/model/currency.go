package model

import "strings"

// Currency is one of the two tradable symbols. PRX is the base token,
// USDT the quote token.
type Currency string

const (
	PRX  Currency = "PRX"
	USDT Currency = "USDT"
)

func (c Currency) String() string { return string(c) }

func (c Currency) Valid() bool {
	return c == PRX || c == USDT
}

// Counter returns the other side of the pair.
func (c Currency) Counter() Currency {
	switch c {
	case PRX:
		return USDT
	case USDT:
		return PRX
	default:
		return ""
	}
}

func ParseCurrency(s string) (Currency, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRX":
		return PRX, true
	case "USDT":
		return USDT, true
	default:
		return "", false
	}
}
