package extract

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	"claimcheck/internal/config"
	"claimcheck/internal/domain"
	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// BillExtractor turns bill text into structured fields. It runs a regex pass
// first and only falls back to the probabilistic call when the critical
// fields (total amount above the configured floor, patient name) are missing.
type BillExtractor struct {
	client         *llm.Client
	minAmount      float64
	maxPromptChars int
}

// NewBillExtractor creates a BillExtractor with the configured thresholds.
func NewBillExtractor(client *llm.Client, cfg config.ExtractConfig) *BillExtractor {
	minAmount := cfg.BillMinAmount
	if minAmount <= 0 {
		minAmount = 1000
	}
	return &BillExtractor{
		client:         client,
		minAmount:      minAmount,
		maxPromptChars: cfg.MaxPromptChars,
	}
}

// billResponse mirrors the extraction schema returned by the model.
type billResponse struct {
	HospitalName  *string        `json:"hospital_name"`
	TotalAmount   *flexFloat     `json:"total_amount"`
	DateOfService *string        `json:"date_of_service"`
	PatientName   *string        `json:"patient_name"`
	BillNumber    *string        `json:"bill_number"`
	LineItems     []billLineItem `json:"line_items"`
}

type billLineItem struct {
	Description string    `json:"description"`
	Quantity    flexFloat `json:"quantity"`
	Rate        flexFloat `json:"rate"`
	Amount      flexFloat `json:"amount"`
}

// Extract runs the hybrid regex-first extraction. It never returns an error:
// on total failure the result is an all-null field set.
func (e *BillExtractor) Extract(ctx context.Context, text, filename string) domain.BillFields {
	if len(strings.TrimSpace(text)) < 10 || text == domain.NoReadableTextSentinel {
		log.Printf("extract.BillExtractor: %s: no meaningful text, returning empty fields", filename)
		return domain.BillFields{}
	}

	fixed := FixOCRText(text)
	fields := e.extractWithPatterns(fixed, filename)

	if fields.TotalAmount != nil && *fields.TotalAmount > e.minAmount && fields.PatientName != nil {
		log.Printf("extract.BillExtractor: %s: regex pass sufficient (amount=%.2f)", filename, *fields.TotalAmount)
		return fields
	}

	log.Printf("extract.BillExtractor: %s: regex pass incomplete, using model fallback", filename)

	var resp billResponse
	err := e.client.GenerateStructured(ctx, port.GenerateInput{
		Prompt:       buildBillPrompt(fixed, filename, e.maxPromptChars),
		SystemPrompt: billSystemPrompt,
		Temperature:  -1,
		MaxTokens:    8000,
	}, billSchemaHint, &resp)
	if err != nil {
		// The regex result, however partial, beats hallucinating.
		log.Printf("extract.BillExtractor: %s: model fallback failed, keeping regex result: %v", filename, err)
		return fields
	}

	return billFieldsFromResponse(resp)
}

func billFieldsFromResponse(resp billResponse) domain.BillFields {
	out := domain.BillFields{
		HospitalName: trimPtr(resp.HospitalName),
		PatientName:  trimPtr(resp.PatientName),
		BillNumber:   trimPtr(resp.BillNumber),
	}
	if resp.TotalAmount != nil {
		v := float64(*resp.TotalAmount)
		out.TotalAmount = &v
	}
	if resp.DateOfService != nil && strings.TrimSpace(*resp.DateOfService) != "" {
		d := NormalizeDate(strings.TrimSpace(*resp.DateOfService))
		out.DateOfService = &d
	}
	for _, item := range resp.LineItems {
		if strings.TrimSpace(item.Description) == "" {
			continue
		}
		out.LineItems = append(out.LineItems, domain.BillLineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    float64(item.Quantity),
			Rate:        float64(item.Rate),
			Amount:      float64(item.Amount),
		})
	}
	return out
}

// extractWithPatterns is the deterministic extraction pass over OCR-repaired
// text.
func (e *BillExtractor) extractWithPatterns(text, filename string) domain.BillFields {
	var fields domain.BillFields

	fields.HospitalName = e.findHospitalName(text, filename)
	fields.TotalAmount = e.findTotalAmount(text)
	fields.PatientName = findPatientName(text)
	fields.DateOfService = findServiceDate(text)
	fields.BillNumber = findBillNumber(text)

	return fields
}

func (e *BillExtractor) findHospitalName(text, filename string) *string {
	filenameLower := strings.ToLower(filename)
	for _, entry := range hospitalFilenameLookup {
		if strings.Contains(filenameLower, entry.fragment) {
			name := entry.name
			return &name
		}
	}
	for _, re := range hospitalTextPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			name := strings.Join(strings.Fields(m[1]), " ")
			return &name
		}
	}
	return nil
}

// findTotalAmount tries each label pattern in order. All matches under a
// pattern are numeric-filtered against the configured floor and the maximum
// is kept; the true total is usually the largest figure near total labels.
func (e *BillExtractor) findTotalAmount(text string) *float64 {
	for _, re := range amountPatterns {
		matches := re.FindAllStringSubmatch(text, -1)
		if matches == nil {
			continue
		}
		var best float64
		found := false
		for _, m := range matches {
			amount, err := ParseAmount(m[1])
			if err != nil || amount <= e.minAmount {
				continue
			}
			if !found || amount > best {
				best = amount
				found = true
			}
		}
		if found {
			return &best
		}
	}
	return nil
}

func findPatientName(text string) *string {
	for _, re := range patientNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			name := nameSuffixRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
			if name != "" {
				return &name
			}
		}
	}
	return nil
}

func findServiceDate(text string) *string {
	for _, re := range serviceDatePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if validDateCandidate(m[1]) {
				d := m[1]
				return &d
			}
		}
	}
	return findLooseDate(text)
}

// findLooseDate matches an unlabeled dd/mm/yyyy anywhere in the text,
// skipping episode and reference numbers by inspecting the surrounding
// context.
func findLooseDate(text string) *string {
	for _, loc := range looseDateRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		candidate := text[start:end]

		before := text[:start]
		before = strings.TrimRight(before, " \t")
		if strings.HasSuffix(before, "/") ||
			strings.HasSuffix(strings.ToLower(before), "episode") ||
			strings.HasSuffix(before, "No") {
			continue
		}
		if end < len(text) {
			next := text[end]
			if next == '/' || (next >= '0' && next <= '9') {
				continue
			}
		}
		if validDateCandidate(candidate) {
			return &candidate
		}
	}
	return nil
}

var dateSplitRe = regexp.MustCompile(`[-/]`)

// validDateCandidate checks that a regex-matched date has plausible day and
// month ranges. A month-name form passes without numeric validation.
func validDateCandidate(s string) bool {
	parts := dateSplitRe.Split(s, -1)
	if len(parts) != 3 {
		return false
	}
	if isAlpha(parts[1]) {
		return true
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	return day >= 1 && day <= 31 && month >= 1 && month <= 12 && (year >= 2000 || (year >= 24 && year < 100))
}

func findBillNumber(text string) *string {
	for _, re := range billNumberPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			num := strings.TrimSpace(m[1])
			if num != "" {
				return &num
			}
		}
	}
	return nil
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
