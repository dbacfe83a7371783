package extract

import (
	"context"
	"log"
	"regexp"
	"strings"

	"claimcheck/internal/domain"
	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// DischargeExtractor turns discharge-summary text into structured fields.
// The model does the heavy lifting; regex back-fill over the original text
// recovers dates and names when the model leaves them null.
type DischargeExtractor struct {
	client *llm.Client
}

func NewDischargeExtractor(client *llm.Client) *DischargeExtractor {
	return &DischargeExtractor{client: client}
}

type dischargeResponse struct {
	PatientName       *string  `json:"patient_name"`
	Diagnosis         *string  `json:"diagnosis"`
	AdmissionDate     *string  `json:"admission_date"`
	DischargeDate     *string  `json:"discharge_date"`
	TreatingPhysician *string  `json:"treating_physician"`
	Procedures        []string `json:"procedures"`
	Medications       []string `json:"medications"`
}

var (
	admissionDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)date\s*of\s*admission\s*[:\-]?\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)admission\s*date\s*[:\-]?\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)admitted\s*on\s*[:\-]?\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)\bDOA\s*[:\-]\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
	}
	dischargeDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)date\s*of\s*discharge\s*[:\-]?\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)discharge\s*date\s*[:\-]?\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)discharged\s*on\s*[:\-]?\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)\bDOD\s*[:\-]\s*(\d{1,2}[-/](?:\d{1,2}|[A-Za-z]{3,9})[-/]\d{2,4})`),
	}
	diagnosisRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)final\s*diagnosis\s*[:\-]\s*([^\n]{3,200})`),
		regexp.MustCompile(`(?i)primary\s*diagnosis\s*[:\-]\s*([^\n]{3,200})`),
		regexp.MustCompile(`(?i)diagnosis\s*[:\-]\s*([^\n]{3,200})`),
	}
)

// Extract runs the model extraction with regex back-fill. It never returns an
// error: on total failure the result is whatever the back-fill recovered.
func (e *DischargeExtractor) Extract(ctx context.Context, text, filename string) domain.DischargeFields {
	if len(strings.TrimSpace(text)) < 10 || text == domain.NoReadableTextSentinel {
		log.Printf("extract.DischargeExtractor: %s: no meaningful text, returning empty fields", filename)
		return domain.DischargeFields{}
	}

	fixed := FixOCRText(text)

	var fields domain.DischargeFields
	var resp dischargeResponse
	err := e.client.GenerateStructured(ctx, port.GenerateInput{
		Prompt:       buildDischargePrompt(fixed, filename),
		SystemPrompt: dischargeSystemPrompt,
		Temperature:  -1,
		MaxTokens:    6000,
	}, dischargeSchemaHint, &resp)
	if err != nil {
		log.Printf("extract.DischargeExtractor: %s: model extraction failed, relying on pattern back-fill: %v", filename, err)
	} else {
		fields = domain.DischargeFields{
			PatientName:       trimPtr(resp.PatientName),
			Diagnosis:         trimPtr(resp.Diagnosis),
			TreatingPhysician: trimPtr(resp.TreatingPhysician),
			Procedures:        resp.Procedures,
			Medications:       resp.Medications,
		}
		if d := trimPtr(resp.AdmissionDate); d != nil {
			n := NormalizeDate(*d)
			fields.AdmissionDate = &n
		}
		if d := trimPtr(resp.DischargeDate); d != nil {
			n := NormalizeDate(*d)
			fields.DischargeDate = &n
		}
	}

	// Back-fill runs over the original text: OCR repair can mangle the exact
	// spacing these patterns key on.
	backfillDischarge(&fields, text)
	return fields
}

func backfillDischarge(fields *domain.DischargeFields, text string) {
	if fields.AdmissionDate == nil {
		if d := firstDateMatch(admissionDateRes, text); d != nil {
			n := NormalizeDate(*d)
			fields.AdmissionDate = &n
		}
	}
	if fields.DischargeDate == nil {
		if d := firstDateMatch(dischargeDateRes, text); d != nil {
			n := NormalizeDate(*d)
			fields.DischargeDate = &n
		}
	}
	if fields.Diagnosis == nil {
		for _, re := range diagnosisRes {
			if m := re.FindStringSubmatch(text); m != nil {
				diag := strings.TrimSpace(m[1])
				if diag != "" {
					fields.Diagnosis = &diag
					break
				}
			}
		}
	}
	if fields.PatientName == nil {
		fields.PatientName = findPatientName(text)
	}
}

func firstDateMatch(res []*regexp.Regexp, text string) *string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			if validDateCandidate(m[1]) {
				d := m[1]
				return &d
			}
		}
	}
	return nil
}
