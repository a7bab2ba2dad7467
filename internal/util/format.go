package util

import (
	"fmt"
	"math"
	"strings"
)

// FormatNumber renders an integer with thousands separators.
func FormatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}

	return string(result)
}

// RoundCost rounds a cost to 4 decimal places. Costs are kept at full
// precision internally and rounded only at the formatting boundary.
func RoundCost(cost float64) float64 {
	return math.Round(cost*10000) / 10000
}

// FormatCost renders a cost in USD with 4 decimal places.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.4f", RoundCost(cost))
}

// FormatCurrency renders a cost with comma separators for thousands.
func FormatCurrency(amount float64) string {
	str := fmt.Sprintf("%.4f", RoundCost(amount))

	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	if len(intPart) > 3 {
		chars := []rune(intPart)
		result := []rune{}
		for i := len(chars) - 1; i >= 0; i-- {
			if len(result) > 0 && len(result)%4 == 3 {
				result = append([]rune{','}, result...)
			}
			result = append([]rune{chars[i]}, result...)
		}
		intPart = string(result)
	}

	return fmt.Sprintf("$%s.%s", intPart, decPart)
}
