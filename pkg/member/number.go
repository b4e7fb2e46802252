package member

import (
	"math"
	"strconv"
	"strings"
)

var numberJunk = strings.NewReplacer(
	",", "",
	"%", "",
	"₹", "",
	"$", "",
	"£", "",
	"€", "",
	" ", "",
	"\u00a0", "",
)

// Number parses a numeric cell from an export. Thousands separators, percent
// signs and currency symbols are ignored; anything unparseable is 0.
func Number(s string) float64 {
	s = numberJunk.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
