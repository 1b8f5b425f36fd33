// Package ranking narrows the classified catalog to criteria-eligible
// programs and produces the final deterministic ordering.
package ranking

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// VariableRateMidpoint is the neutral value assigned to programs whose
// funding rate is marked variable.
const VariableRateMidpoint = 50

// Absolute currency amounts are compressed onto the 0-100 percentage
// scale via min(100, log10(amount+1) * logScaleFactor).
const logScaleFactor = 20

var (
	rangeRatePattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*-\s*(\d+(?:[.,]\d+)?)\s*%`)
	upToRatePattern  = regexp.MustCompile(`bis(?:\s+zu)?\s+(\d+(?:[.,]\d+)?)\s*%`)
	plainRatePattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)
	currencyPattern  = regexp.MustCompile(`([\d.]+(?:,\d+)?)\s*(?:eur|euro|€)`)
	variableMarkers  = []string{"variabel", "variable"}
)

// ParseFundingRate normalizes a raw funding-rate string onto a 0-100
// scale. The function is total: every input maps to a value, unparseable
// or absent input to 0.
//
// Formats, in match order:
//   - "60-90%"  -> 90 (upper bound of the range)
//   - "bis 80%" -> 80 ("bis zu 80%" likewise)
//   - "75%"     -> 75
//   - "variabel" -> 50
//   - "10.000 EUR" -> min(100, log10(10001)*20)
func ParseFundingRate(raw string) float64 {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return 0
	}

	for _, marker := range variableMarkers {
		if strings.Contains(value, marker) {
			return VariableRateMidpoint
		}
	}

	if m := rangeRatePattern.FindStringSubmatch(value); m != nil {
		return clampRate(parseDecimal(m[2]))
	}
	if m := upToRatePattern.FindStringSubmatch(value); m != nil {
		return clampRate(parseDecimal(m[1]))
	}
	if m := plainRatePattern.FindStringSubmatch(value); m != nil {
		return clampRate(parseDecimal(m[1]))
	}
	if m := currencyPattern.FindStringSubmatch(value); m != nil {
		amount := parseCurrencyAmount(m[1])
		if amount <= 0 {
			return 0
		}
		return math.Min(100, math.Log10(amount+1)*logScaleFactor)
	}

	return 0
}

// parseDecimal reads a number that may use a German decimal comma.
func parseDecimal(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCurrencyAmount reads a German-formatted amount: dots are thousand
// separators, a comma is the decimal separator ("10.000,50" -> 10000.5).
func parseCurrencyAmount(s string) float64 {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func clampRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
