package domain

// DocumentType identifies the kind of claim document.
type DocumentType string

const (
	DocTypeBill             DocumentType = "bill"
	DocTypeDischargeSummary DocumentType = "discharge_summary"
	DocTypeIDCard           DocumentType = "id_card"
	DocTypeUnknown          DocumentType = "unknown"
)

// ParseDocumentType coerces a label to a known DocumentType. Anything
// unrecognized maps to unknown rather than failing.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocTypeBill, DocTypeDischargeSummary, DocTypeIDCard, DocTypeUnknown:
		return DocumentType(s)
	default:
		return DocTypeUnknown
	}
}

// RequiredDocumentTypes is the minimum set a claim must contain to be payable.
var RequiredDocumentTypes = []DocumentType{DocTypeBill, DocTypeDischargeSummary}

// ExtractionMethod records which text-extraction strategy produced the text.
type ExtractionMethod string

const (
	MethodLayout ExtractionMethod = "layout"
	MethodPlain  ExtractionMethod = "plain"
	MethodOCR    ExtractionMethod = "ocr"
	MethodNone   ExtractionMethod = "none"
)

// Severity grades a validation discrepancy.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ClaimStatus is the final adjudication outcome for a claim.
type ClaimStatus string

const (
	StatusApproved      ClaimStatus = "approved"
	StatusRejected      ClaimStatus = "rejected"
	StatusPendingReview ClaimStatus = "pending_review"
)
