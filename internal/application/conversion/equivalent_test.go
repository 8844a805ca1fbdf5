package conversion

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"prxwallet/internal/domain/model"
)

func TestEquivalent(t *testing.T) {
	two := decimal.NewFromInt(2)

	tests := []struct {
		name   string
		amount string
		from   model.Currency
		price  decimal.Decimal
		want   string
	}{
		{"prx multiplies", "10", model.PRX, two, "20.000000"},
		{"usdt divides", "10", model.USDT, two, "5.000000"},
		{"usdt rounds to six places", "1", model.USDT, decimal.NewFromInt(3), "0.333333"},
		{"fractional price", "2.5", model.PRX, decimal.RequireFromString("0.125"), "0.312500"},
		{"comma separator", "1,5", model.PRX, two, "3.000000"},
		{"surrounding spaces", "  4 ", model.PRX, two, "8.000000"},
		{"empty amount", "", model.PRX, two, ZeroEquivalent},
		{"zero amount", "0", model.PRX, two, ZeroEquivalent},
		{"negative amount", "-3", model.USDT, two, ZeroEquivalent},
		{"not a number", "abc", model.PRX, two, ZeroEquivalent},
		{"thousands comma with dot", "1,000.5", model.PRX, two, ZeroEquivalent},
		{"zero price", "10", model.PRX, decimal.Zero, ZeroEquivalent},
		{"negative price", "10", model.USDT, decimal.NewFromInt(-1), ZeroEquivalent},
		{"unknown currency", "10", model.Currency("BTC"), two, ZeroEquivalent},
		{"tiny exponent", "1e-50000000", model.PRX, two, ZeroEquivalent},
		{"huge exponent", "1e50000000", model.USDT, two, ZeroEquivalent},
		{"upper case exponent", "2E3", model.PRX, two, ZeroEquivalent},
		{"too many digits", strings.Repeat("9", 41), model.PRX, two, ZeroEquivalent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equivalent(tt.amount, tt.from, tt.price); got != tt.want {
				t.Errorf("Equivalent(%q, %s, %s) = %q, want %q", tt.amount, tt.from, tt.price, got, tt.want)
			}
		})
	}
}

func TestEquivalentRoundTrip(t *testing.T) {
	amounts := []string{"0.000001", "1", "10", "12.345678", "999999.5", "0.75"}
	prices := []string{"1", "2", "3", "0.5", "1.337", "42.1234", "1000"}
	tolerance := decimal.New(1, -Precision)

	for _, p := range prices {
		price := decimal.RequireFromString(p)
		for _, a := range amounts {
			orig := decimal.RequireFromString(a)

			usdt := Equivalent(a, model.PRX, price)
			back := decimal.RequireFromString(Equivalent(usdt, model.USDT, price))
			if diff := back.Sub(orig).Abs(); diff.GreaterThan(tolerance) {
				t.Errorf("PRX round trip of %s at %s = %s (diff %s)", a, p, back, diff)
			}

			prx := Equivalent(a, model.USDT, price)
			if decimal.RequireFromString(prx).IsZero() {
				// amount too small to show up at this price
				continue
			}
			back = decimal.RequireFromString(Equivalent(prx, model.PRX, price))
			limit := tolerance.Mul(decimal.Max(price, decimal.NewFromInt(1)))
			if diff := back.Sub(orig).Abs(); diff.GreaterThan(limit) {
				t.Errorf("USDT round trip of %s at %s = %s (diff %s)", a, p, back, diff)
			}
		}
	}
}

func TestParseAmount(t *testing.T) {
	if _, err := ParseAmount(""); !errors.Is(err, ErrEmptyAmount) {
		t.Errorf("empty: got %v", err)
	}
	if _, err := ParseAmount("1.2.3"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("garbage: got %v", err)
	}
	if _, err := ParseAmount("1e3"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("exponent: got %v", err)
	}
	if _, err := ParseAmount("0.000"); !errors.Is(err, ErrNonPositive) {
		t.Errorf("zero: got %v", err)
	}
	d, err := ParseAmount("0,25")
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}
	if !d.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("got %s, want 0.25", d)
	}
}
