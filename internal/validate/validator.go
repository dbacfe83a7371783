package validate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"claimcheck/internal/domain"
	"claimcheck/internal/extract"
	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

const (
	// serviceDateBuffer widens the hospitalization window for bill service
	// dates; billing dates commonly land a day or two around the stay.
	serviceDateBuffer = 48 * time.Hour

	// amountUpperBound flags implausibly large bill totals for review.
	amountUpperBound = 1_000_000

	cleanSummary      = "All rule-based validations passed. No additional concerns identified."
	summaryFailedText = "Unable to perform additional LLM validation."
)

// Validator runs the cross-document consistency checks over a claim's
// structured records.
type Validator struct {
	client *llm.Client
}

func NewValidator(client *llm.Client) *Validator {
	return &Validator{client: client}
}

// Validate runs every check and assembles the merged result. IsValid is
// derived from the checks alone, so validating the same records twice yields
// the same result.
func (v *Validator) Validate(ctx context.Context, records []domain.StructuredRecord) domain.ValidationResult {
	result := domain.ValidationResult{
		MissingDocuments: []domain.DocumentType{},
		Discrepancies:    []domain.Discrepancy{},
		Warnings:         []string{},
	}

	v.checkRequiredDocuments(records, &result)
	v.checkNameConsistency(records, &result)
	v.checkDateConsistency(records, &result)
	v.checkAmounts(records, &result)
	v.checkCompleteness(records, &result)

	result.IsValid = result.CriticalCount() == 0 && len(result.MissingDocuments) == 0
	result.Summary = v.summarize(ctx, records, result)
	return result
}

func (v *Validator) checkRequiredDocuments(records []domain.StructuredRecord, result *domain.ValidationResult) {
	present := map[domain.DocumentType]bool{}
	for _, r := range records {
		present[r.DocumentType] = true
	}
	for _, required := range domain.RequiredDocumentTypes {
		if !present[required] {
			result.MissingDocuments = append(result.MissingDocuments, required)
		}
	}
}

func (v *Validator) checkNameConsistency(records []domain.StructuredRecord, result *domain.ValidationResult) {
	type namedRecord struct {
		filename string
		name     string
	}
	var named []namedRecord
	for i := range records {
		if name, ok := records[i].PatientName(); ok {
			named = append(named, namedRecord{filename: records[i].Filename, name: name})
		}
	}
	if len(named) < 2 {
		return
	}
	reference := named[0]
	for _, other := range named[1:] {
		if namesSimilar(reference.name, other.name) {
			continue
		}
		result.Discrepancies = append(result.Discrepancies, domain.Discrepancy{
			Field:             "patient_name",
			Description:       fmt.Sprintf("Patient name mismatch: '%s' vs '%s'", reference.name, other.name),
			Severity:          domain.SeverityCritical,
			DocumentsInvolved: []string{reference.filename, other.filename},
		})
	}
}

// namesSimilar tolerates reordering and partial names. Two names match when
// they are equal after normalization or share at least two tokens. The shared
// token heuristic can false-positive on common surnames; it is kept coarse on
// purpose to tolerate honorifics and middle-name variation.
func namesSimilar(a, b string) bool {
	na := strings.Join(strings.Fields(strings.ToLower(a)), " ")
	nb := strings.Join(strings.Fields(strings.ToLower(b)), " ")
	if na == nb {
		return true
	}
	tokensA := map[string]bool{}
	for _, token := range strings.Fields(na) {
		tokensA[token] = true
	}
	shared := 0
	for _, token := range strings.Fields(nb) {
		if tokensA[token] {
			shared++
		}
	}
	return shared >= 2
}

func (v *Validator) checkDateConsistency(records []domain.StructuredRecord, result *domain.ValidationResult) {
	var admission, discharge *time.Time
	var admissionFile, dischargeFile string
	for i := range records {
		r := &records[i]
		if r.DocumentType != domain.DocTypeDischargeSummary || r.Discharge == nil {
			continue
		}
		if r.Discharge.AdmissionDate != nil && admission == nil {
			if t, err := extract.ParseDate(*r.Discharge.AdmissionDate); err == nil {
				admission = &t
				admissionFile = r.Filename
			}
		}
		if r.Discharge.DischargeDate != nil && discharge == nil {
			if t, err := extract.ParseDate(*r.Discharge.DischargeDate); err == nil {
				discharge = &t
				dischargeFile = r.Filename
			}
		}
	}

	// Each date keeps its own source file, so a discrepancy built from two
	// discharge records cites both.
	stayFiles := []string{admissionFile}
	if dischargeFile != admissionFile {
		stayFiles = append(stayFiles, dischargeFile)
	}

	if admission != nil && discharge != nil && discharge.Before(*admission) {
		result.Discrepancies = append(result.Discrepancies, domain.Discrepancy{
			Field: "date_consistency",
			Description: fmt.Sprintf("Discharge date %s is before admission date %s",
				discharge.Format("2006-01-02"), admission.Format("2006-01-02")),
			Severity:          domain.SeverityCritical,
			DocumentsInvolved: stayFiles,
		})
	}

	if admission == nil || discharge == nil || discharge.Before(*admission) {
		return
	}
	windowStart := admission.Add(-serviceDateBuffer)
	windowEnd := discharge.Add(serviceDateBuffer)
	for i := range records {
		r := &records[i]
		if r.DocumentType != domain.DocTypeBill || r.Bill == nil || r.Bill.DateOfService == nil {
			continue
		}
		service, err := extract.ParseDate(*r.Bill.DateOfService)
		if err != nil {
			continue
		}
		if service.Before(windowStart) || service.After(windowEnd) {
			involved := []string{r.Filename}
			for _, f := range stayFiles {
				if f != r.Filename {
					involved = append(involved, f)
				}
			}
			result.Discrepancies = append(result.Discrepancies, domain.Discrepancy{
				Field: "date_of_service",
				Description: fmt.Sprintf("Bill service date %s falls outside the hospitalization period %s to %s",
					service.Format("2006-01-02"), admission.Format("2006-01-02"), discharge.Format("2006-01-02")),
				Severity:          domain.SeverityWarning,
				DocumentsInvolved: involved,
			})
		}
	}
}

func (v *Validator) checkAmounts(records []domain.StructuredRecord, result *domain.ValidationResult) {
	for i := range records {
		r := &records[i]
		if r.DocumentType != domain.DocTypeBill || r.Bill == nil || r.Bill.TotalAmount == nil {
			continue
		}
		amount := *r.Bill.TotalAmount
		switch {
		case amount <= 0:
			result.Discrepancies = append(result.Discrepancies, domain.Discrepancy{
				Field:             "total_amount",
				Description:       fmt.Sprintf("Bill total amount %.2f is zero or negative", amount),
				Severity:          domain.SeverityCritical,
				DocumentsInvolved: []string{r.Filename},
			})
		case amount > amountUpperBound:
			result.Discrepancies = append(result.Discrepancies, domain.Discrepancy{
				Field:             "total_amount",
				Description:       fmt.Sprintf("Bill total amount %.2f is unusually high", amount),
				Severity:          domain.SeverityWarning,
				DocumentsInvolved: []string{r.Filename},
			})
		}
	}
}

func (v *Validator) checkCompleteness(records []domain.StructuredRecord, result *domain.ValidationResult) {
	for i := range records {
		r := &records[i]
		var missing []string
		switch r.DocumentType {
		case domain.DocTypeBill:
			if r.Bill == nil {
				missing = []string{"hospital_name", "total_amount", "date_of_service"}
				break
			}
			if r.Bill.HospitalName == nil {
				missing = append(missing, "hospital_name")
			}
			if r.Bill.TotalAmount == nil {
				missing = append(missing, "total_amount")
			}
			if r.Bill.DateOfService == nil {
				missing = append(missing, "date_of_service")
			}
		case domain.DocTypeDischargeSummary:
			if r.Discharge == nil {
				missing = []string{"patient_name", "diagnosis", "admission_date", "discharge_date"}
				break
			}
			if r.Discharge.PatientName == nil {
				missing = append(missing, "patient_name")
			}
			if r.Discharge.Diagnosis == nil {
				missing = append(missing, "diagnosis")
			}
			if r.Discharge.AdmissionDate == nil {
				missing = append(missing, "admission_date")
			}
			if r.Discharge.DischargeDate == nil {
				missing = append(missing, "discharge_date")
			}
		case domain.DocTypeIDCard:
			if r.IDCard == nil {
				missing = []string{"policy_holder_name", "policy_number"}
				break
			}
			if r.IDCard.PolicyHolderName == nil {
				missing = append(missing, "policy_holder_name")
			}
			if r.IDCard.PolicyNumber == nil {
				missing = append(missing, "policy_number")
			}
		default:
			continue
		}
		if len(missing) > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s (%s): missing %s", r.Filename, r.DocumentType, strings.Join(missing, ", ")))
		}
	}
}

// summarize asks the model for a short narrative only when there is something
// to narrate.
func (v *Validator) summarize(ctx context.Context, records []domain.StructuredRecord, result domain.ValidationResult) string {
	if len(result.Discrepancies) == 0 {
		return cleanSummary
	}
	if v.client == nil {
		return summaryFailedText
	}

	var sb strings.Builder
	sb.WriteString("Summarize the validation findings for this insurance claim in 2-3 sentences.\n\nDocuments:\n")
	for i := range records {
		fmt.Fprintf(&sb, "- %s (%s)\n", records[i].Filename, records[i].DocumentType)
	}
	sb.WriteString("\nDiscrepancies found:\n")
	for _, d := range result.Discrepancies {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", d.Severity, d.Field, d.Description)
	}
	if len(result.MissingDocuments) > 0 {
		sb.WriteString("\nMissing required documents:\n")
		for _, m := range result.MissingDocuments {
			fmt.Fprintf(&sb, "- %s\n", m)
		}
	}
	sb.WriteString("\nFocus on what a claims reviewer should verify first.")

	summary, err := v.client.Generate(ctx, port.GenerateInput{
		Prompt:       sb.String(),
		SystemPrompt: "You are an insurance claim validation assistant. Be concise and factual.",
		Temperature:  0.3,
		MaxTokens:    300,
	})
	if err != nil {
		log.Printf("validate.Validator: summary generation failed: %v", err)
		return summaryFailedText
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return summaryFailedText
	}
	return summary
}
