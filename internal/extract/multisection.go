package extract

import "strings"

var dischargeSectionMarkers = []string{
	"discharge summary",
	"diagnosis:",
	"admission date",
	"discharge date",
	"surgery",
	"procedure done",
	"treatment",
	"surgeon",
	"anesthesiologist",
}

// HasDischargeSection reports whether a document classified as something else
// also embeds a discharge summary. Three distinct markers is the floor;
// individual words like "treatment" show up in plain bills too often.
func HasDischargeSection(text string) bool {
	lower := strings.ToLower(text)
	count := 0
	for _, marker := range dischargeSectionMarkers {
		if strings.Contains(lower, marker) {
			count++
		}
	}
	return count >= 3
}
