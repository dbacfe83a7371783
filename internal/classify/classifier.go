package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"claimcheck/internal/domain"
	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// keyword sets for the deterministic fallback classifier.
var (
	billContentKeywords = []string{
		"bill no", "invoice", "billing", "gross amount",
		"net amount", "total amount", "payment", "receipt",
	}
	dischargeContentKeywords = []string{
		"discharge summary", "diagnosis", "admission date", "discharge date",
		"surgeon", "procedure", "medication", "treatment",
	}
	billFilenameKeywords      = []string{"bill", "invoice", "receipt", "payment"}
	dischargeFilenameKeywords = []string{"discharge", "summary", "report", "medical"}
	idCardFilenameKeywords    = []string{"card", "id", "insurance", "policy"}
)

const (
	keywordThreshold     = 3
	fallbackContentChars = 5000
)

// Classifier assigns a document type to extracted text using a probabilistic
// labeler with a deterministic keyword fallback.
type Classifier struct {
	client      *llm.Client
	concurrency int
}

// NewClassifier creates a Classifier. Concurrency bounds the batch fan-out.
func NewClassifier(client *llm.Client, concurrency int) *Classifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Classifier{client: client, concurrency: concurrency}
}

func genInput(prompt string) port.GenerateInput {
	return port.GenerateInput{
		Prompt:       prompt,
		SystemPrompt: systemPrompt + "\n\n" + fewShotExamples,
		Temperature:  -1,
		MaxTokens:    500,
	}
}

// labelResponse is the structured output requested from the labeler.
type labelResponse struct {
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Classify labels a single document. On any labeler failure it substitutes
// the deterministic fallback rather than returning an error.
func (c *Classifier) Classify(ctx context.Context, filename, content string) domain.ClassificationResult {
	prompt := buildPrompt(filename, content)

	var resp labelResponse
	err := c.client.GenerateStructured(ctx, genInput(prompt), "", &resp)
	if err != nil {
		log.Printf("classify.Classifier: %s: labeler failed, using fallback: %v", filename, err)
		return c.fallback(filename, content)
	}

	docType := domain.ParseDocumentType(strings.ToLower(strings.TrimSpace(resp.DocumentType)))
	confidence := resp.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0.5
	}

	return domain.ClassificationResult{
		Filename:     filename,
		DocumentType: docType,
		Confidence:   confidence,
		Reasoning:    resp.Reasoning,
	}
}

// ClassifyBatch labels documents concurrently. An individual failure is
// replaced by the fallback result; the batch always completes.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []domain.ExtractedText) []domain.ClassificationResult {
	results := make([]domain.ClassificationResult, len(texts))

	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	for i, t := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t domain.ExtractedText) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.Classify(ctx, t.Filename, t.Text)
		}(i, t)
	}
	wg.Wait()

	return results
}

// fallback classifies by keyword frequency over the first few thousand
// characters of content, then by filename patterns.
func (c *Classifier) fallback(filename, content string) domain.ClassificationResult {
	filenameLower := strings.ToLower(filename)
	contentLower := truncateToRune(strings.ToLower(content), fallbackContentChars)

	billCount := countKeywords(contentLower, billContentKeywords)
	dischargeCount := countKeywords(contentLower, dischargeContentKeywords)

	var (
		docType    domain.DocumentType
		confidence float64
		reasoning  string
	)
	switch {
	case billCount >= keywordThreshold:
		docType, confidence = domain.DocTypeBill, 0.7
		reasoning = fmt.Sprintf("Found %d billing keywords in content", billCount)
	case dischargeCount >= keywordThreshold:
		docType, confidence = domain.DocTypeDischargeSummary, 0.7
		reasoning = fmt.Sprintf("Found %d discharge keywords in content", dischargeCount)
	case containsAny(filenameLower, billFilenameKeywords):
		docType, confidence = domain.DocTypeBill, 0.6
		reasoning = "Filename contains billing keywords"
	case containsAny(filenameLower, dischargeFilenameKeywords):
		docType, confidence = domain.DocTypeDischargeSummary, 0.6
		reasoning = "Filename contains discharge keywords"
	case containsAny(filenameLower, idCardFilenameKeywords):
		docType, confidence = domain.DocTypeIDCard, 0.6
		reasoning = "Filename contains ID card keywords"
	default:
		docType, confidence = domain.DocTypeUnknown, 0.3
		reasoning = "No clear indicators found in filename or content"
	}

	log.Printf("classify.Classifier: %s: fallback classification %s (%.1f)", filename, docType, confidence)

	return domain.ClassificationResult{
		Filename:     filename,
		DocumentType: docType,
		Confidence:   confidence,
		Reasoning:    reasoning,
	}
}

// truncateToRune caps s at max bytes without splitting a multi-byte rune.
func truncateToRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func countKeywords(content string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
