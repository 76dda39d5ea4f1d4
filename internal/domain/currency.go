package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Currency is a normalized three-letter currency code.
type Currency struct {
	code string
}

// PLN is the currency every new account is seeded with.
var PLN = MustCurrency("PLN")

func NewCurrency(code string) (Currency, error) {
	if utf8.RuneCountInString(code) != 3 || strings.ContainsFunc(code, unicode.IsSpace) {
		return Currency{}, fmt.Errorf("%w: %q must be exactly 3 non-blank characters", ErrInvalidCurrencyCode, code)
	}
	return Currency{code: strings.ToUpper(code)}, nil
}

// MustCurrency is NewCurrency for package-level constants and tests.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Code() string {
	return c.code
}

func (c Currency) Equal(other Currency) bool {
	return c.code == other.code
}

func (c Currency) IsZero() bool {
	return c.code == ""
}

func (c Currency) String() string {
	return c.code
}
