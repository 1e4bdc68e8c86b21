// Package format turns metric values and period keys into display strings.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rupee = "₹"

// en-IN groups digits 3-then-2 (lakh, crore)
var printer = message.NewPrinter(language.MustParse("en-IN"))

// Currency formats v as rupees with Indian digit grouping and two decimals,
// e.g. 1234567.5 -> "₹12,34,567.50".
func Currency(v float64) string {
	return rupees(v, 2)
}

// AxisCurrency formats v as whole rupees for axis ticks, e.g. "₹12,34,567"
func AxisCurrency(v float64) string {
	return rupees(math.Round(v), 0)
}

func rupees(v float64, decimals int) string {
	s := rupee + printer.Sprint(number.Decimal(math.Abs(v),
		number.MinFractionDigits(decimals), number.MaxFractionDigits(decimals)))
	if v < 0 {
		return "-" + s
	}
	return s
}

// Percent rounds v to two decimals and appends "%"
func Percent(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64) + "%"
}

// Lakhs divides by one lakh and appends "L". decimals < 0 keeps the
// shortest representation, as axis ticks do.
func Lakhs(v float64, decimals int) string {
	return rupee + strconv.FormatFloat(v/100000, 'f', decimals, 64) + "L"
}

// Count formats an integer count with Indian digit grouping
func Count(v float64) string {
	return printer.Sprint(number.Decimal(int64(math.Round(v))))
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
