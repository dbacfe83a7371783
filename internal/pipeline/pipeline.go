package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"claimcheck/internal/classify"
	"claimcheck/internal/decide"
	"claimcheck/internal/domain"
	"claimcheck/internal/extract"
	"claimcheck/internal/pdftext"
	"claimcheck/internal/validate"
)

const (
	excerptLength = 500

	// secondaryRecordConfidence is assigned to discharge records carved out
	// of documents classified as something else. The section detection is
	// keyword-based, so it never outranks a direct classification.
	secondaryRecordConfidence = 0.85
)

// Pipeline runs a claim through its fixed stage sequence: text extraction,
// classification, per-type field extraction, cross-document validation, and
// decision. Every dependency is injected; the pipeline owns no clients.
type Pipeline struct {
	texts       *pdftext.Extractor
	classifier  *classify.Classifier
	bills       *extract.BillExtractor
	discharges  *extract.DischargeExtractor
	idCards     *extract.IDCardExtractor
	validator   *validate.Validator
	engine      *decide.Engine
	concurrency int
}

func New(
	texts *pdftext.Extractor,
	classifier *classify.Classifier,
	bills *extract.BillExtractor,
	discharges *extract.DischargeExtractor,
	idCards *extract.IDCardExtractor,
	validator *validate.Validator,
	engine *decide.Engine,
	concurrency int,
) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		texts:       texts,
		classifier:  classifier,
		bills:       bills,
		discharges:  discharges,
		idCards:     idCards,
		validator:   validator,
		engine:      engine,
		concurrency: concurrency,
	}
}

// Process runs one claim end to end. A failing document degrades into a
// record with processing errors rather than failing the claim; only an empty
// claim is an error.
func (p *Pipeline) Process(ctx context.Context, requestID string, docs []domain.RawDocument) (domain.ClaimResult, error) {
	if len(docs) == 0 {
		return domain.ClaimResult{}, domain.ErrEmptyClaim
	}

	start := time.Now()
	result := domain.ClaimResult{
		RequestID: requestID,
		Errors:    []string{},
	}
	log.Printf("pipeline.Pipeline: %s: processing %d document(s)", requestID, len(docs))

	texts := p.extractTexts(ctx, docs)
	result.Classifications = p.classifier.ClassifyBatch(ctx, texts)

	records, errs := p.buildRecords(ctx, texts, result.Classifications)
	result.Records = records
	result.Errors = append(result.Errors, errs...)

	result.Validation = p.validator.Validate(ctx, result.Records)
	result.Decision = p.engine.Decide(ctx, result.Records, result.Validation)

	result.ProcessingTimeMS = time.Since(start).Milliseconds()
	log.Printf("pipeline.Pipeline: %s: done in %dms, status=%s", requestID, result.ProcessingTimeMS, result.Decision.Status)
	return result, nil
}

func (p *Pipeline) extractTexts(ctx context.Context, docs []domain.RawDocument) []domain.ExtractedText {
	texts := make([]domain.ExtractedText, len(docs))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			texts[i] = p.texts.Extract(ctx, docs[i])
		}(i)
	}
	wg.Wait()
	return texts
}

// buildRecords runs per-type extraction for each document, fanned out under
// the configured concurrency. Output order follows input order, with any
// secondary section record directly after its primary.
func (p *Pipeline) buildRecords(ctx context.Context, texts []domain.ExtractedText, classifications []domain.ClassificationResult) ([]domain.StructuredRecord, []string) {
	perDoc := make([][]domain.StructuredRecord, len(texts))
	perDocErrs := make([][]string, len(texts))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			perDoc[i], perDocErrs[i] = p.processDocument(ctx, texts[i], classifications[i])
		}(i)
	}
	wg.Wait()

	var records []domain.StructuredRecord
	var errs []string
	for i := range perDoc {
		records = append(records, perDoc[i]...)
		errs = append(errs, perDocErrs[i]...)
	}
	return records, errs
}

func (p *Pipeline) processDocument(ctx context.Context, text domain.ExtractedText, classification domain.ClassificationResult) ([]domain.StructuredRecord, []string) {
	var errs []string

	record := domain.StructuredRecord{
		Filename:       text.Filename,
		DocumentType:   classification.DocumentType,
		RawTextExcerpt: excerpt(text.Text),
		Confidence:     classification.Confidence,
	}
	if text.Method == domain.MethodNone {
		record.ProcessingErrors = append(record.ProcessingErrors, "text extraction produced no readable content")
		errs = append(errs, fmt.Sprintf("%s: failed to extract readable text", text.Filename))
	}

	switch classification.DocumentType {
	case domain.DocTypeBill:
		fields := p.bills.Extract(ctx, text.Text, text.Filename)
		record.Bill = &fields
	case domain.DocTypeDischargeSummary:
		fields := p.discharges.Extract(ctx, text.Text, text.Filename)
		record.Discharge = &fields
	case domain.DocTypeIDCard:
		fields := p.idCards.Extract(ctx, text.Text, text.Filename)
		record.IDCard = &fields
	default:
		errs = append(errs, fmt.Sprintf("%s: document type could not be determined, skipped", text.Filename))
		return nil, errs
	}

	records := []domain.StructuredRecord{record}

	if classification.DocumentType == domain.DocTypeBill && extract.HasDischargeSection(text.Text) {
		log.Printf("pipeline.Pipeline: %s: discharge section detected inside bill document", text.Filename)
		fields := p.discharges.Extract(ctx, text.Text, text.Filename)
		records = append(records, domain.StructuredRecord{
			Filename:       text.Filename,
			DocumentType:   domain.DocTypeDischargeSummary,
			Discharge:      &fields,
			RawTextExcerpt: excerpt(text.Text),
			Confidence:     secondaryRecordConfidence,
		})
	}

	return records, errs
}

func excerpt(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= excerptLength {
		return trimmed
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := excerptLength
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut]
}
