package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatMoney renders an amount in pesos, rounded to whole units
// with Argentine digit grouping (e.g. "$1.234.568").
func FormatMoney(amount float64) string {
	return "$" + moneyPrinter.Sprintf("%d", int64(math.Round(amount)))
}
