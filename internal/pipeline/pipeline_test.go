package pipeline_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/classify"
	"claimcheck/internal/config"
	"claimcheck/internal/decide"
	"claimcheck/internal/domain"
	"claimcheck/internal/extract"
	"claimcheck/internal/llm"
	"claimcheck/internal/pdftext"
	"claimcheck/internal/pipeline"
	"claimcheck/internal/validate"
	"claimcheck/mocks"
)

// fileEchoRunner fakes pdftotext by returning the temp file's bytes as its
// stdout, so test documents carry their "extracted" text directly. The OCR
// binaries always fail.
type fileEchoRunner struct{}

func (fileEchoRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if name != "pdftotext" {
		return nil, nil, errors.New("not installed")
	}
	// pdftotext <flags> <input> -
	path := args[len(args)-2]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

// newTestPipeline builds a pipeline whose generator always refuses, so every
// stage exercises its deterministic fallback path.
func newTestPipeline() *pipeline.Pipeline {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return("", &llm.ContentBlockedError{Provider: "test", Reason: "unavailable"})
	client := llm.NewClient(gen, llm.RetryPolicy{MaxAttempts: 1})

	texts := pdftext.NewExtractor(config.PDFConfig{
		PdftotextBin:  "pdftotext",
		PdftoppmBin:   "pdftoppm",
		TesseractBin:  "tesseract",
		MinTextLength: 10,
	}, fileEchoRunner{})

	return pipeline.New(
		texts,
		classify.NewClassifier(client, 2),
		extract.NewBillExtractor(client, config.ExtractConfig{}),
		extract.NewDischargeExtractor(client),
		extract.NewIDCardExtractor(client),
		validate.NewValidator(nil),
		decide.NewEngine(nil),
		2,
	)
}

const (
	billDoc = `Apollo Hospital
Bill No: 12345
Invoice
Receipt
Patient Name: Rahul Sharma
Bill Date: 03/02/2025
Net Amount: Rs. 5,000.00`

	dischargeDoc = `DISCHARGE SUMMARY
Patient Name: Rahul Sharma
Diagnosis: Acute Appendicitis
Admission Date: 01/02/2025
Discharge Date: 05/02/2025`
)

func doc(filename, content string) domain.RawDocument {
	return domain.RawDocument{Filename: filename, Bytes: []byte(content)}
}

func TestProcess_CompleteClaimApproved(t *testing.T) {
	p := newTestPipeline()
	docs := []domain.RawDocument{
		doc("apollo_bill.pdf", billDoc),
		doc("discharge_summary.pdf", dischargeDoc),
	}

	result, err := p.Process(context.Background(), "req-1", docs)

	require.NoError(t, err)
	assert.Equal(t, "req-1", result.RequestID)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Classifications, 2)
	assert.Equal(t, domain.DocTypeBill, result.Classifications[0].DocumentType)
	assert.Equal(t, domain.DocTypeDischargeSummary, result.Classifications[1].DocumentType)

	require.Len(t, result.Records, 2)
	bill := result.Records[0]
	require.NotNil(t, bill.Bill)
	require.NotNil(t, bill.Bill.TotalAmount)
	assert.InDelta(t, 5000, *bill.Bill.TotalAmount, 1e-9)
	require.NotNil(t, bill.Bill.PatientName)
	assert.Equal(t, "Rahul Sharma", *bill.Bill.PatientName)

	discharge := result.Records[1]
	require.NotNil(t, discharge.Discharge)
	require.NotNil(t, discharge.Discharge.AdmissionDate)
	assert.Equal(t, "2025-02-01", *discharge.Discharge.AdmissionDate)
	require.NotNil(t, discharge.Discharge.DischargeDate)
	assert.Equal(t, "2025-02-05", *discharge.Discharge.DischargeDate)

	assert.True(t, result.Validation.IsValid)
	assert.Equal(t, domain.StatusApproved, result.Decision.Status)
	require.NotNil(t, result.Decision.ApprovedAmount)
	assert.InDelta(t, 5000, *result.Decision.ApprovedAmount, 1e-9)
}

func TestProcess_MissingDischargeSummaryRejected(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Process(context.Background(), "req-2", []domain.RawDocument{
		doc("apollo_bill.pdf", billDoc),
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentType{domain.DocTypeDischargeSummary}, result.Validation.MissingDocuments)
	assert.Equal(t, domain.StatusRejected, result.Decision.Status)
	assert.Contains(t, result.Decision.DecisionFactors[0], "Missing required documents")
}

func TestProcess_ReversedStayDatesRejected(t *testing.T) {
	p := newTestPipeline()
	reversed := `DISCHARGE SUMMARY
Patient Name: Rahul Sharma
Diagnosis: Acute Appendicitis
Admission Date: 05/02/2025
Discharge Date: 01/02/2025`

	result, err := p.Process(context.Background(), "req-3", []domain.RawDocument{
		doc("apollo_bill.pdf", billDoc),
		doc("discharge_summary.pdf", reversed),
	})

	require.NoError(t, err)
	assert.False(t, result.Validation.IsValid)
	require.GreaterOrEqual(t, result.Validation.CriticalCount(), 1)
	assert.Equal(t, "date_consistency", result.Validation.Discrepancies[0].Field)
	assert.Equal(t, domain.StatusRejected, result.Decision.Status)
}

func TestProcess_DischargeSectionInsideBill(t *testing.T) {
	p := newTestPipeline()
	combined := billDoc + `
Discharge Summary
Diagnosis: Acute Appendicitis
Admission Date: 01/02/2025
Discharge Date: 05/02/2025
Surgery performed without complication`

	result, err := p.Process(context.Background(), "req-4", []domain.RawDocument{
		doc("apollo_bill.pdf", combined),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, domain.DocTypeBill, result.Records[0].DocumentType)

	secondary := result.Records[1]
	assert.Equal(t, "apollo_bill.pdf", secondary.Filename)
	assert.Equal(t, domain.DocTypeDischargeSummary, secondary.DocumentType)
	assert.InDelta(t, 0.85, secondary.Confidence, 1e-9)
	require.NotNil(t, secondary.Discharge)
	require.NotNil(t, secondary.Discharge.AdmissionDate)
	assert.Equal(t, "2025-02-01", *secondary.Discharge.AdmissionDate)

	// Both required types came out of the single file, so the claim stands.
	assert.Empty(t, result.Validation.MissingDocuments)
	assert.Equal(t, domain.StatusApproved, result.Decision.Status)
}

func TestProcess_UnclassifiableDocumentIsolated(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Process(context.Background(), "req-5", []domain.RawDocument{
		doc("apollo_bill.pdf", billDoc),
		doc("scan001.pdf", "lorem ipsum dolor sit amet consectetur"),
		doc("discharge_summary.pdf", dischargeDoc),
	})

	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "scan001.pdf: document type could not be determined, skipped", result.Errors[0])
	assert.Len(t, result.Records, 2)
	assert.Equal(t, domain.StatusApproved, result.Decision.Status)
}

func TestProcess_UnreadableBillRejected(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Process(context.Background(), "req-6", []domain.RawDocument{
		doc("bill_scan.pdf", "x"),
		doc("discharge_summary.pdf", dischargeDoc),
	})

	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	bill := result.Records[0]
	assert.Equal(t, domain.DocTypeBill, bill.DocumentType)
	assert.Contains(t, bill.ProcessingErrors, "text extraction produced no readable content")
	require.NotNil(t, bill.Bill)
	assert.Nil(t, bill.Bill.TotalAmount)

	// The claim-level errors list names the failed document even though the
	// batch completed.
	assert.Equal(t, []string{"bill_scan.pdf: failed to extract readable text"}, result.Errors)

	assert.Equal(t, domain.StatusRejected, result.Decision.Status)
	assert.Equal(t, []string{"No bill amount could be extracted"}, result.Decision.DecisionFactors)
}

func TestProcess_EmptyClaim(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Process(context.Background(), "req-7", nil)

	assert.ErrorIs(t, err, domain.ErrEmptyClaim)
}
