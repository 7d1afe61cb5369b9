package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatYen renders an amount as "¥74,800". Negative amounts render as "-¥500".
func FormatYen(amount int64) string {
	p := message.NewPrinter(language.Japanese)
	if amount < 0 {
		return "-" + p.Sprintf("¥%d", -amount)
	}
	return p.Sprintf("¥%d", amount)
}
