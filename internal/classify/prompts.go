package classify

import "fmt"

const systemPrompt = `You are a medical insurance document classifier.
Your task is to identify the PRIMARY document type based on its filename and content samples.

IMPORTANT: Medical PDFs often contain MULTIPLE sections. You will see samples from the
beginning, middle, and end of the document. Classify based on the DOMINANT content.

Document Types:
1. bill - Hospital bills, invoices, medical bills, payment receipts
2. discharge_summary - Hospital discharge summaries, medical reports, treatment summaries
3. id_card - Insurance ID cards, policy cards, member cards
4. unknown - Cannot determine or doesn't fit the above categories

Key Indicators:
- Bill: Invoice numbers, itemized charges, billing amounts, payment details
- Discharge Summary: Diagnosis, admission/discharge dates, treatment procedures, surgeon names
- ID Card: Member ID, policy numbers, insurance company branding

Consider the ENTIRE document content provided, not just the first page.`

const fewShotExamples = `
Examples:

Filename: "apollo_hospital_bill_12345.pdf"
Content: "INVOICE... Patient Name... Total Amount... Consultation Charges..."
Type: bill
Reason: Contains invoice terminology and billing information

Filename: "discharge_summary_john_doe.pdf"
Content: "DISCHARGE SUMMARY... Diagnosis: Fracture... Admission Date... Treatment provided..."
Type: discharge_summary
Reason: Contains clinical information and discharge details

Filename: "insurance_card_front.pdf"
Content: "MEMBER ID: 123456... Policy Number... Valid Through..."
Type: id_card
Reason: Contains insurance policy information

Filename: "document_001.pdf"
Content: "..."
Type: unknown
Reason: Insufficient information to classify`

const (
	sampleThreshold = 6000
	sampleBegin     = 2000
	sampleMiddle    = 1500
	sampleEnd       = 2000
)

// buildPrompt assembles the classification prompt. Documents longer than
// sampleThreshold are sampled from the beginning, middle, and end so a
// trailing section still influences the label.
func buildPrompt(filename, content string) string {
	sampled := content
	if len(content) > sampleThreshold {
		mid := len(content) / 2
		midEnd := mid + sampleMiddle
		if midEnd > len(content) {
			midEnd = len(content)
		}
		sampled = fmt.Sprintf("=== BEGINNING ===\n%s\n\n=== MIDDLE ===\n%s\n\n=== END ===\n%s",
			content[:sampleBegin], content[mid:midEnd], content[len(content)-sampleEnd:])
	}

	return fmt.Sprintf(`Classify this document:

Filename: %s

Content:
%s

Respond ONLY with valid JSON (no markdown):
{
    "document_type": "bill|discharge_summary|id_card|unknown",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation"
}`, filename, sampled)
}
