package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimals is the number of decimal places an amount carries.
const Decimals = 8

// Coin is the amount that represents one whole coin.
const Coin Amount = 100_000_000

// Amount represents a coin value as a fixed point number with 8 decimal
// places. Using integer math keeps the ledger conservation checks exact.
type Amount int64

// NewAmount constructs an amount from a whole and a fractional part
// expressed in the smallest unit.
func NewAmount(whole int64, frac int64) Amount {
	return Amount(whole)*Coin + Amount(frac)
}

// ParseAmount parses a decimal string like "60" or "0.1" into an amount.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty value")
	}

	var neg bool
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("parse amount: %q is not a decimal number", s)
	}

	if len(frac) > Decimals {
		return 0, fmt.Errorf("parse amount: %q has more than %d decimals", s, Decimals)
	}
	frac += strings.Repeat("0", Decimals-len(frac))

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("parse amount: invalid whole part %q", whole)
	}

	if w > math.MaxInt64/int64(Coin) {
		return 0, fmt.Errorf("parse amount: %q overflows", s)
	}

	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("parse amount: invalid fractional part %q", frac)
	}

	if w*int64(Coin) > math.MaxInt64-f {
		return 0, fmt.Errorf("parse amount: %q overflows", s)
	}

	a := NewAmount(w, f)
	if neg {
		a = -a
	}

	return a, nil
}

// String implements the fmt.Stringer interface. The format is stable since
// it's used as input to output and transaction ids.
func (a Amount) String() string {
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}

	return fmt.Sprintf("%s%d.%08d", sign, a/Coin, a%Coin)
}

// MarshalText implements the encoding.TextMarshaler interface.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (a *Amount) UnmarshalText(data []byte) error {
	v, err := ParseAmount(string(data))
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// isDigits reports if the string holds only ascii digits.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
