package domain

// RawDocument is an uploaded claim document before any processing. The bytes
// are owned by the caller for the lifetime of the request.
type RawDocument struct {
	Filename string
	Bytes    []byte
}

// ExtractedText is the text pulled out of one document, tagged with the
// strategy that produced it. Never mutated after creation.
type ExtractedText struct {
	Filename string           `json:"filename"`
	Text     string           `json:"text"`
	Method   ExtractionMethod `json:"extraction_method"`
}

// ClassificationResult assigns a document type to one input document.
type ClassificationResult struct {
	Filename     string       `json:"filename"`
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"`
	Reasoning    string       `json:"reasoning"`
}

// BillLineItem is one row of an itemized hospital bill.
type BillLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
}

// BillFields holds the structured fields of a hospital bill. Fields not found
// in the document stay nil rather than being guessed.
type BillFields struct {
	HospitalName  *string        `json:"hospital_name"`
	TotalAmount   *float64       `json:"total_amount"`
	DateOfService *string        `json:"date_of_service"`
	PatientName   *string        `json:"patient_name"`
	BillNumber    *string        `json:"bill_number"`
	LineItems     []BillLineItem `json:"line_items,omitempty"`
}

// DischargeFields holds the structured fields of a discharge summary.
type DischargeFields struct {
	PatientName       *string  `json:"patient_name"`
	Diagnosis         *string  `json:"diagnosis"`
	AdmissionDate     *string  `json:"admission_date"`
	DischargeDate     *string  `json:"discharge_date"`
	TreatingPhysician *string  `json:"treating_physician"`
	Procedures        []string `json:"procedures,omitempty"`
	Medications       []string `json:"medications,omitempty"`
}

// IDCardFields holds the structured fields of an insurance ID card.
type IDCardFields struct {
	PolicyHolderName  *string `json:"policy_holder_name"`
	PolicyNumber      *string `json:"policy_number"`
	InsuranceProvider *string `json:"insurance_provider"`
	CoverageDetails   *string `json:"coverage_details"`
	ValidFrom         *string `json:"valid_from"`
	ValidUntil        *string `json:"valid_until"`
}

// StructuredRecord is the normalized field set extracted from one document or
// one document section. Exactly one of Bill, Discharge, IDCard is non-nil and
// matches DocumentType. A single input file may yield more than one record
// when a secondary section is detected inside it.
type StructuredRecord struct {
	Filename         string           `json:"filename"`
	DocumentType     DocumentType     `json:"document_type"`
	Bill             *BillFields      `json:"bill,omitempty"`
	Discharge        *DischargeFields `json:"discharge_summary,omitempty"`
	IDCard           *IDCardFields    `json:"id_card,omitempty"`
	RawTextExcerpt   string           `json:"raw_text_excerpt,omitempty"`
	Confidence       float64          `json:"confidence"`
	ProcessingErrors []string         `json:"processing_errors,omitempty"`
}

// PatientName returns the record's patient or policy-holder name, whichever
// the document type carries.
func (r *StructuredRecord) PatientName() (string, bool) {
	switch r.DocumentType {
	case DocTypeBill:
		if r.Bill != nil && r.Bill.PatientName != nil {
			return *r.Bill.PatientName, true
		}
	case DocTypeDischargeSummary:
		if r.Discharge != nil && r.Discharge.PatientName != nil {
			return *r.Discharge.PatientName, true
		}
	case DocTypeIDCard:
		if r.IDCard != nil && r.IDCard.PolicyHolderName != nil {
			return *r.IDCard.PolicyHolderName, true
		}
	}
	return "", false
}

// Discrepancy is a consistency or quality issue found during validation.
// Immutable once created.
type Discrepancy struct {
	Field             string   `json:"field"`
	Description       string   `json:"description"`
	Severity          Severity `json:"severity"`
	DocumentsInvolved []string `json:"documents_involved"`
}

// ValidationResult is the merged outcome of all cross-document checks.
// IsValid is derived: true iff no critical discrepancy exists and no required
// document is missing. It is recomputed on every validation run, never set
// independently.
type ValidationResult struct {
	IsValid          bool           `json:"is_valid"`
	MissingDocuments []DocumentType `json:"missing_documents"`
	Discrepancies    []Discrepancy  `json:"discrepancies"`
	Warnings         []string       `json:"warnings"`
	Summary          string         `json:"validation_summary"`
}

// CriticalCount returns the number of critical-severity discrepancies.
func (v *ValidationResult) CriticalCount() int {
	n := 0
	for _, d := range v.Discrepancies {
		if d.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity discrepancies.
func (v *ValidationResult) WarningCount() int {
	n := 0
	for _, d := range v.Discrepancies {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// ClaimDecision is the final adjudication for a claim. ApprovedAmount is set
// only when Status is approved.
type ClaimDecision struct {
	Status          ClaimStatus `json:"status"`
	Reason          string      `json:"reason"`
	ApprovedAmount  *float64    `json:"approved_amount,omitempty"`
	Confidence      float64     `json:"confidence"`
	DecisionFactors []string    `json:"decision_factors"`
}

// ClaimResult bundles everything produced for one claim-processing request.
type ClaimResult struct {
	RequestID        string                 `json:"request_id"`
	Classifications  []ClassificationResult `json:"classifications"`
	Records          []StructuredRecord     `json:"records"`
	Validation       ValidationResult       `json:"validation"`
	Decision         ClaimDecision          `json:"decision"`
	Errors           []string               `json:"errors"`
	ProcessingTimeMS int64                  `json:"processing_time_ms"`
}

// DecisionAuditEntry is a persisted snapshot of one claim decision, kept for
// later review when the audit repository is configured.
type DecisionAuditEntry struct {
	ID             string   `db:"id" json:"id"`
	RequestID      string   `db:"request_id" json:"request_id"`
	Status         string   `db:"status" json:"status"`
	Reason         string   `db:"reason" json:"reason"`
	ApprovedAmount *float64 `db:"approved_amount" json:"approved_amount,omitempty"`
	Confidence     float64  `db:"confidence" json:"confidence"`
	DocumentCount  int      `db:"document_count" json:"document_count"`
	CreatedAt      string   `db:"created_at" json:"created_at"`
}
