package domain

import "strings"

// unitRatios maps (from, to) pairs with a defined, unambiguous ratio.
// Uninterpreted units (page, glass, session, ...) are deliberately
// absent: rather than guess a lossy ratio, the converter passes the
// value through untouched.
var unitRatios = map[[2]string]float64{
	{"minute", "hour"}: 1.0 / 60,
	{"hour", "minute"}: 60,
	{"ml", "liter"}:    1.0 / 1000,
	{"liter", "ml"}:    1000,
}

var unitAliases = map[string]string{
	"minutes":     "minute",
	"minute":      "minute",
	"hours":       "hour",
	"hour":        "hour",
	"ml":          "ml",
	"milliliter":  "ml",
	"milliliters": "ml",
	"liter":       "liter",
	"liters":      "liter",
}

func canonicalUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if c, ok := unitAliases[u]; ok {
		return c
	}
	return u
}

// ConvertUnit expresses value in toUnit. Only pairs with a defined
// ratio are converted; everything else, including unknown units,
// returns the input unchanged with converted == false. It never fails.
func ConvertUnit(value float64, fromUnit, toUnit string) (float64, bool) {
	from := canonicalUnit(fromUnit)
	to := canonicalUnit(toUnit)

	if from == to {
		return value, true
	}

	if ratio, ok := unitRatios[[2]string{from, to}]; ok {
		return value * ratio, true
	}

	return value, false
}
