// Package money converts between human decimal input and the integer
// minor-unit amounts used everywhere else in the tracker.
package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Cents is an amount of money in minor currency units.
type Cents = int64

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.New(5, -1)

	// Largest and smallest amounts that fit into Cents
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)

	// leadingNumber matches the numeric prefix of an input, e.g. "12.5" in "12.5abc"
	// or "1.5e3" in "1.5e3 GBP"
	leadingNumber = regexp.MustCompile(`^([+-]?)(\d+\.?\d*|\.\d+)(?:[eE]([+-]?\d+))?`)
)

// maxExponent bounds the exponent of scientific notation. Larger exponents
// overflow Cents, smaller ones round to 0.
const maxExponent = 20

// ParseDecimal parses a decimal string into cents.
//
// Input that does not start with a number yields 0, as does a number
// too large for Cents. Scientific notation ("1.5e3") is accepted. Amounts
// are rounded half-up to the nearest cent.
func ParseDecimal(s string) Cents {
	match := leadingNumber.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0
	}

	sign, mantissa, exponent := match[1], match[2], match[3]

	mantissa = strings.TrimSuffix(mantissa, ".")
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}

	if exponent != "" {
		exp, err := strconv.Atoi(exponent)
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return 0
		}
		mantissa += "e" + exponent
	}

	d, err := decimal.NewFromString(mantissa)
	if err != nil {
		return 0
	}
	if sign == "-" {
		d = d.Neg()
	}

	cents := d.Mul(hundred).Add(half).Floor()
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0
	}

	return cents.IntPart()
}

// FromDecimal converts a decimal amount of currency units into cents,
// rounding half-up.
func FromDecimal(d decimal.Decimal) Cents {
	return d.Mul(hundred).Add(half).Floor().IntPart()
}

// ToDecimalString returns the amount as a plain string with two decimal places.
func ToDecimalString(c Cents) string {
	return decimal.New(c, -2).StringFixed(2)
}

// ResolveRelativeInput resolves the text a user typed for an amount.
//
// A leading "+" or "-" adds the amount to current, anything else replaces it.
// The result is never negative.
func ResolveRelativeInput(text string, current Cents) Cents {
	text = strings.TrimSpace(text)

	var resolved Cents
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		resolved = current + ParseDecimal(text)
	} else {
		resolved = ParseDecimal(text)
	}

	return max(resolved, 0)
}

// Abs returns the absolute value of c.
func Abs(c Cents) Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Sum adds up all amounts.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}

// Formatter formats amounts for display.
type Formatter struct {
	Symbol string
	Tag    language.Tag
}

// DefaultFormatter formats pound sterling amounts in British English.
var DefaultFormatter = Formatter{
	Symbol: "£",
	Tag:    language.BritishEnglish,
}

// Format returns the display string for an amount, e.g. "-£1,234.50".
func (f Formatter) Format(c Cents) string {
	sign := ""
	if c < 0 {
		sign = "-"
	}

	abs := Abs(c)
	whole := message.NewPrinter(f.Tag).Sprintf("%d", abs/100)

	return fmt.Sprintf("%s%s%s.%02d", sign, f.Symbol, whole, abs%100)
}

// Format formats the amount with the DefaultFormatter.
func Format(c Cents) string {
	return DefaultFormatter.Format(c)
}
