package export

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var gb = message.NewPrinter(language.BritishEnglish)

// FormatGBP renders whole pounds with thousands separators, e.g. "£1,043,905".
func FormatGBP(v float64) string {
	v = math.Round(v)
	if v < 0 {
		return "-£" + gb.Sprintf("%.0f", -v)
	}
	return "£" + gb.Sprintf("%.0f", v)
}

// FormatPercent renders a percentage to one decimal place, e.g. "9.6%".
func FormatPercent(v float64) string {
	return gb.Sprintf("%.1f%%", v)
}
