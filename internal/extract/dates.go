package extract

import (
	"fmt"
	"time"
)

// dateLayouts are tried in order. Indian documents write numeric dates
// day-first, so dd/mm layouts come before mm/dd; the latter only catch
// dates whose day-first reading is impossible.
var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"02/Jan/2006",
	"2/Jan/2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses a date string in any supported claim-document format.
// Invalid day/month combinations are rejected, not clamped.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// time.Parse normalizes some overflow (e.g. Feb 30); reject anything
		// that does not round-trip to the same calendar day.
		if t.Format(layout) != s {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", s)
}

// NormalizeDate converts any supported date string to YYYY-MM-DD. Returns
// the input unchanged when it cannot be parsed.
func NormalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
