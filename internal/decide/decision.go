package decide

import (
	"context"
	"fmt"
	"log"
	"strings"

	"claimcheck/internal/domain"
	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// Engine produces the final adjudication for a claim. The status comes from a
// fixed rule cascade; the model only writes the narrative reason.
type Engine struct {
	client *llm.Client
}

func NewEngine(client *llm.Client) *Engine {
	return &Engine{client: client}
}

// Decide applies the rule cascade in order and stops at the first rule that
// fires. Rules are evaluated strictly before any narrative generation, so a
// model failure can never change the outcome.
func (e *Engine) Decide(ctx context.Context, records []domain.StructuredRecord, validation domain.ValidationResult) domain.ClaimDecision {
	status, factors, approvedAmount := applyRules(records, validation)

	decision := domain.ClaimDecision{
		Status:          status,
		ApprovedAmount:  approvedAmount,
		Confidence:      computeConfidence(records, validation),
		DecisionFactors: factors,
	}
	decision.Reason = e.narrate(ctx, records, validation, decision)
	return decision
}

func applyRules(records []domain.StructuredRecord, validation domain.ValidationResult) (domain.ClaimStatus, []string, *float64) {
	if len(validation.MissingDocuments) > 0 {
		names := make([]string, len(validation.MissingDocuments))
		for i, d := range validation.MissingDocuments {
			names[i] = string(d)
		}
		return domain.StatusRejected,
			[]string{fmt.Sprintf("Missing required documents: %s", strings.Join(names, ", "))},
			nil
	}

	if n := validation.CriticalCount(); n > 0 {
		factors := []string{fmt.Sprintf("%d critical discrepancy(ies) found", n)}
		for _, d := range validation.Discrepancies {
			if d.Severity == domain.SeverityCritical {
				factors = append(factors, d.Description)
			}
		}
		return domain.StatusRejected, factors, nil
	}

	billAmount := findBillAmount(records)
	if billAmount == nil {
		return domain.StatusRejected,
			[]string{"No bill amount could be extracted"},
			nil
	}

	if n := validation.WarningCount(); n >= 3 {
		factors := []string{fmt.Sprintf("%d warning(s) require manual review", n)}
		for _, d := range validation.Discrepancies {
			if d.Severity == domain.SeverityWarning {
				factors = append(factors, d.Description)
			}
		}
		return domain.StatusPendingReview, factors, nil
	}

	return domain.StatusApproved,
		[]string{"All validations passed", fmt.Sprintf("Bill amount: %.2f", *billAmount)},
		billAmount
}

func findBillAmount(records []domain.StructuredRecord) *float64 {
	for i := range records {
		r := &records[i]
		if r.DocumentType == domain.DocTypeBill && r.Bill != nil &&
			r.Bill.TotalAmount != nil && *r.Bill.TotalAmount > 0 {
			return r.Bill.TotalAmount
		}
	}
	return nil
}

// computeConfidence scores how certain the cascade's outcome is, clamped to
// [0, 1].
func computeConfidence(records []domain.StructuredRecord, validation domain.ValidationResult) float64 {
	confidence := 0.5
	if len(validation.MissingDocuments) == 0 {
		confidence += 0.15
	}
	if len(validation.Discrepancies) == 0 {
		confidence += 0.2
	}
	if validation.IsValid {
		confidence += 0.15
	}
	confidence -= 0.05 * float64(validation.WarningCount())

	avgDocConfidence := 0.5
	if len(records) > 0 {
		sum := 0.0
		for i := range records {
			sum += records[i].Confidence
		}
		avgDocConfidence = sum / float64(len(records))
	}
	confidence += (avgDocConfidence - 0.5) * 0.2

	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// narrate asks the model for a reviewer-facing explanation. The explanation
// must lead with the decided status; when the model wanders, the status is
// prepended.
func (e *Engine) narrate(ctx context.Context, records []domain.StructuredRecord, validation domain.ValidationResult, decision domain.ClaimDecision) string {
	fallback := strings.Join(decision.DecisionFactors, "; ")
	if e.client == nil {
		return fallback
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a 2-4 sentence explanation for this insurance claim decision.\n\nDecision: %s\n", decision.Status)
	if decision.ApprovedAmount != nil {
		fmt.Fprintf(&sb, "Approved amount: %.2f\n", *decision.ApprovedAmount)
	}
	sb.WriteString("\nDecision factors:\n")
	for _, f := range decision.DecisionFactors {
		fmt.Fprintf(&sb, "- %s\n", f)
	}
	sb.WriteString("\nDocuments submitted:\n")
	for i := range records {
		fmt.Fprintf(&sb, "- %s (%s)\n", records[i].Filename, records[i].DocumentType)
	}
	fmt.Fprintf(&sb, "\nValidation summary: %s\n", validation.Summary)
	fmt.Fprintf(&sb, "\nStart the explanation by stating that the claim is %s.", decision.Status)

	reason, err := e.client.Generate(ctx, port.GenerateInput{
		Prompt:       sb.String(),
		SystemPrompt: "You are an insurance claim adjudication assistant. Explain decisions clearly and professionally without inventing facts.",
		Temperature:  0.2,
		MaxTokens:    500,
	})
	if err != nil {
		log.Printf("decide.Engine: narrative generation failed: %v", err)
		return fallback
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fallback
	}
	if !strings.Contains(strings.ToLower(reason), strings.ToLower(string(decision.Status))) {
		reason = fmt.Sprintf("This claim is %s. %s", decision.Status, reason)
	}
	return reason
}
