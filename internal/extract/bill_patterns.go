package extract

import "regexp"

// hospitalFilenameLookup maps filename fragments to canonical hospital names.
// The filename is the most reliable source for known chains.
var hospitalFilenameLookup = []struct {
	fragment string
	name     string
}{
	{"apollo", "Apollo Hospitals"},
	{"appolo", "Apollo Hospitals"},
	{"max", "Max Healthcare"},
	{"fortis", "Fortis Healthcare"},
	{"ganga ram", "Sir Ganga Ram Hospital"},
	{"gangaram", "Sir Ganga Ram Hospital"},
	{"aiims", "AIIMS"},
	{"medanta", "Medanta"},
	{"manipal", "Manipal Hospitals"},
}

// hospitalTextPatterns match known hospital chains inside document text.
var hospitalTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Apollo\s+Hospitals?(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Max\s+(?:Healthcare|Hospital|Super\s+Speciality\s+Hospital)(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Fortis\s+(?:Healthcare|Hospital)(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Sir\s+Ganga\s+Ram\s+Hospital)`),
	regexp.MustCompile(`(?i)(AIIMS(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Medanta(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Manipal\s+Hospitals?(?:\s+[\w\s]+)?)`),
}

// amountPatterns are label patterns for the bill total, ordered by
// specificity. Insurance-bill labels (payor/net amount) come first because
// generic "total" labels also match intermediate subtotals.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)payor\s*amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)net\s*(?:bill\s*)?amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)net\s*payable\s*amount?\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*\(?\s*([0-9,]+\.?[0-9]*)\s*\)?`),
	regexp.MustCompile(`(?im)bill\s*amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)(?:total|final)\s*amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)grand\s*total\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)amount\s*(?:payable|due)\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
}

// patientNamePatterns capture a titled or plain name after a patient-name
// label. Trailing field labels that bleed into the capture are stripped
// afterwards.
// Name tokens are joined with spaces or tabs only, never newlines, so a
// capture cannot run into the next line's label.
var patientNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?[ \t]*((?:Mr|Mrs|Ms|Dr)\.?[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){0,2})(?:[ \t]+(?:Bill|UHID|Age|Gender|\d))`),
	regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?[ \t]*((?:Mr|Mrs|Ms|Dr)\.?[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){0,3})`),
	regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?[ \t]*([A-Z][a-z]+[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)?)`),
}

var nameSuffixRe = regexp.MustCompile(`(?i)\s+(Bill|UHID|Age|Gender|Episode|Admission).*$`)

const monthAlt = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

// serviceDatePatterns find a bill's service date, labeled forms first.
var serviceDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}[-/](?:` + monthAlt + `)[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:bill|invoice)\s*date\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*of\s*(?:service|admission|bill)\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:service|admission)\s*date\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)admitted\s*(?:on)?\s*[:\-]?\s*(\d{1,2}[-/](?:` + monthAlt + `)[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)admitted\s*(?:on)?\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)discharge\s*(?:date|on)?\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
}

// looseDateRe is the last-resort unlabeled date: 4-digit year required, and
// the surrounding context is checked separately to exclude episode and
// reference numbers.
var looseDateRe = regexp.MustCompile(`\s(\d{1,2}[-/]\d{1,2}[-/]\d{4})`)

var billNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:bill|invoice|receipt)\s*(?:no|number|#)\s*[:\-]?\s*([A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)IPID\s*[:\-]?\s*([A-Z0-9\-/]+)`),
}
