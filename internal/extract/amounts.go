package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a currency string to its numeric value, stripping
// symbols, commas, and Indian-numbering grouping: "₹3,32,602.59" -> 332602.59.
func ParseAmount(s string) (float64, error) {
	var b strings.Builder
	seenDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			seenDigit = true
		case r == '.' && seenDigit:
			// A dot before any digit belongs to a label ("Rs."), not the number.
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("no numeric content in %q", s)
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return amount, nil
}
