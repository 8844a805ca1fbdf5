// Package conversion computes counter-currency amounts at a price snapshot.
package conversion

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"prxwallet/internal/domain/model"
)

// Precision is the number of fractional digits in an equivalent amount.
const Precision = 6

// ZeroEquivalent is returned whenever an equivalent cannot be computed.
const ZeroEquivalent = "0"

// maxAmountLen bounds a typed amount, digits and separator included.
const maxAmountLen = 40

var (
	ErrEmptyAmount   = errors.New("amount is empty")
	ErrInvalidAmount = errors.New("amount is not a number")
	ErrNonPositive   = errors.New("amount must be greater than zero")
)

// ParseAmount reads a user-typed amount in plain decimal notation. A single
// comma is taken as the decimal separator when the input has no dot.
// Exponent notation is rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if len(s) > maxAmountLen || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositive
	}
	return d, nil
}

// Equivalent returns the value of amount, typed in from, expressed in the
// other currency. PRX amounts are multiplied by price, USDT amounts divided.
// Bad input or a non-positive price yields ZeroEquivalent.
func Equivalent(amount string, from model.Currency, price decimal.Decimal) string {
	a, err := ParseAmount(amount)
	if err != nil || !price.IsPositive() {
		return ZeroEquivalent
	}

	switch from {
	case model.PRX:
		return a.Mul(price).StringFixed(Precision)
	case model.USDT:
		return a.DivRound(price, Precision).StringFixed(Precision)
	default:
		return ZeroEquivalent
	}
}

// Quote is Equivalent against a Price snapshot.
func Quote(amount string, from model.Currency, p model.Price) string {
	return Equivalent(amount, from, p.Value)
}
