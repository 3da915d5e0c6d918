// AngelaMos | 2026
// money.go

package core

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatUGX renders an integer amount with thousands separators, e.g.
// "UGX 10,000".
func FormatUGX(amount int64) string {
	return amountPrinter.Sprintf("UGX %d", amount)
}
