// Package money renders display prices. Amounts are formatted with the
// currency's symbol and conventional grouping; callers never do arithmetic
// on the formatted string.
package money

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders an amount in the given ISO 4217 currency. Unknown codes
// fall back to "CODE amount".
func Format(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %.2f", strings.ToUpper(code), amount)
	}
	return printer.Sprintf("%v", currency.NarrowSymbol(unit.Amount(amount)))
}
