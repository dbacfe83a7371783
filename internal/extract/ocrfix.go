package extract

import "regexp"

// OCR spacing repairs. Scanned documents come back with characters split by
// spaces ("M r s . N ANDI RAWAT", "3 2 5 6 24") and a handful of known
// substitution artifacts.
var (
	spacedDigitsRe     = regexp.MustCompile(`(\d)\s+(\d)`)
	spacedUpperLowerRe = regexp.MustCompile(`([A-Z])\s+([a-z])\s+([a-z])`)
	spacedUpperRe      = regexp.MustCompile(`([A-Z])\s+([A-Z])\s+([A-Z])`)
	spacedDottedRe     = regexp.MustCompile(`([A-Za-z])\s+([A-Za-z])\s+([A-Za-z])\s*\.`)
	splitNameRe        = regexp.MustCompile(`([A-Z])\s+([A-Z][a-z])`)

	ocrSubstitutions = []struct {
		re          *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`Femate\)`), "Female)"},
		{regexp.MustCompile(`Mate\)`), "Male)"},
		{regexp.MustCompile(`(\w+)!_\s+`), "$1 "},
		{regexp.MustCompile(`!_`), ""},
		{regexp.MustCompile(`\s+\)`), ")"},
		{regexp.MustCompile(`\(\s+`), "("},
		{regexp.MustCompile(`\s+:`), ":"},
		{regexp.MustCompile(`:\s{2,}`), ": "},
	}
)

// FixOCRText repairs common OCR spacing and character issues:
// "M r s ." -> "Mrs.", "3 2 5 6 24" -> "325624", "Mate)" -> "Male)".
func FixOCRText(text string) string {
	// Digit runs split by whitespace collapse pairwise; iterate to a fixed
	// point so "3 2 5 6" becomes "3256" rather than "32 56".
	for {
		fixed := spacedDigitsRe.ReplaceAllString(text, "$1$2")
		if fixed == text {
			break
		}
		text = fixed
	}

	// Dotted abbreviations first, before the pairwise rules consume their
	// spacing.
	text = spacedDottedRe.ReplaceAllString(text, "$1$2$3.")
	text = spacedUpperLowerRe.ReplaceAllString(text, "$1$2$3")
	text = spacedUpperRe.ReplaceAllString(text, "$1$2$3")
	text = splitNameRe.ReplaceAllString(text, "$1$2")

	for _, sub := range ocrSubstitutions {
		text = sub.re.ReplaceAllString(text, sub.replacement)
	}

	return text
}
