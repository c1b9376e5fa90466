package primitive

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var decimalRegex = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Decimal is a FHIR decimal. It holds the literal exactly as written so that
// precision survives a decode/encode cycle: "1.50" is written back as "1.50"
// and "100" as "100". Use Decimal() for arithmetic.
type Decimal struct {
	text string
}

// DecimalFromString validates s as a decimal literal.
func DecimalFromString(s string) (Decimal, error) {
	if !decimalRegex.MatchString(s) {
		return Decimal{}, fmt.Errorf("%q is not a decimal literal", s)
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return Decimal{}, fmt.Errorf("%q is not a decimal literal: %v", s, err)
	}
	return Decimal{text: s}, nil
}

// MustDecimal is DecimalFromString for literals known to be valid.
func MustDecimal(s string) Decimal {
	d, err := DecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimal converts an arithmetic result. The literal is the shortest form
// shopspring produces, so trailing zeros are not kept.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{text: d.String()}
}

func (d Decimal) String() string {
	return d.text
}

// IsZero reports whether d is the zero Decimal{}, which holds no literal.
// It says nothing about the numeric value.
func (d Decimal) IsZero() bool {
	return d.text == ""
}

// Decimal returns the numeric value.
func (d Decimal) Decimal() decimal.Decimal {
	if d.text == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(d.text)
}

// Equal compares numerically: "1.5" equals "1.50".
func (d Decimal) Equal(other Decimal) bool {
	return d.Decimal().Equal(other.Decimal())
}
