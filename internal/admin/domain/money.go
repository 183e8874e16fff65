package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cents is an amount of money in the smallest currency unit.
type Cents int64

var ErrInvalidAmount = errors.New("domain: invalid money amount")

// ParseCents parses a non-negative decimal string such as "1299" or "12.99"
// into cents. An empty string is zero.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (frac == "" || len(frac) > 2) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseUint(whole, 10, 53)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	sub, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return Cents(units*100 + sub), nil
}

// String renders the amount with two decimal places.
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
