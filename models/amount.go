package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a strictly positive decimal amount typed by a user.
func ParseAmount(text string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not a number", ErrInvalidInput, text)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: amount is too large", ErrInvalidInput)
	}
	return f, nil
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
