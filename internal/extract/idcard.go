package extract

import (
	"context"
	"log"
	"strings"

	"claimcheck/internal/domain"
	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// IDCardExtractor turns insurance ID card text into structured fields.
type IDCardExtractor struct {
	client *llm.Client
}

func NewIDCardExtractor(client *llm.Client) *IDCardExtractor {
	return &IDCardExtractor{client: client}
}

type idCardResponse struct {
	PolicyHolderName  *string `json:"policy_holder_name"`
	PolicyNumber      *string `json:"policy_number"`
	InsuranceProvider *string `json:"insurance_provider"`
	CoverageDetails   *string `json:"coverage_details"`
	ValidFrom         *string `json:"valid_from"`
	ValidUntil        *string `json:"valid_until"`
}

// Extract never returns an error: on failure the result is an all-null field
// set.
func (e *IDCardExtractor) Extract(ctx context.Context, text, filename string) domain.IDCardFields {
	if len(strings.TrimSpace(text)) < 10 || text == domain.NoReadableTextSentinel {
		log.Printf("extract.IDCardExtractor: %s: no meaningful text, returning empty fields", filename)
		return domain.IDCardFields{}
	}

	var resp idCardResponse
	err := e.client.GenerateStructured(ctx, port.GenerateInput{
		Prompt:       buildIDCardPrompt(FixOCRText(text), filename),
		SystemPrompt: idCardSystemPrompt,
		Temperature:  -1,
		MaxTokens:    1000,
	}, idCardSchemaHint, &resp)
	if err != nil {
		log.Printf("extract.IDCardExtractor: %s: model extraction failed: %v", filename, err)
		return domain.IDCardFields{}
	}

	out := domain.IDCardFields{
		PolicyHolderName:  trimPtr(resp.PolicyHolderName),
		PolicyNumber:      trimPtr(resp.PolicyNumber),
		InsuranceProvider: trimPtr(resp.InsuranceProvider),
		CoverageDetails:   trimPtr(resp.CoverageDetails),
	}
	if d := trimPtr(resp.ValidFrom); d != nil {
		n := NormalizeDate(*d)
		out.ValidFrom = &n
	}
	if d := trimPtr(resp.ValidUntil); d != nil {
		n := NormalizeDate(*d)
		out.ValidUntil = &n
	}
	return out
}
