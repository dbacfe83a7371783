package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const billSystemPrompt = `You are an expert medical billing data extraction specialist with OCR text understanding capabilities.
Extract structured information from hospital bills and invoices, even from poorly formatted or scanned documents.

Your Expertise:
- Reading OCR text with spacing issues (e.g., "M r s . Name" -> "Mrs. Name")
- Identifying fields by context, not just labels (total amount may be in summary section without label)
- Parsing tables even when alignment is broken
- Finding patient/bill identifiers across multiple formats
- Handling Indian currency formats (Rs., INR, lakhs, crores)

Critical Rules:
- Return null ONLY if field genuinely not present after exhaustive search
- Numbers: Extract digits only (remove currency symbols and commas) - e.g., "3,32,602.59" -> 332602.59
- Dates: Convert to YYYY-MM-DD format (e.g., "03/02/2025" -> "2025-02-03", "3-Feb-25" -> "2025-02-03")
- Names: Fix OCR spacing if needed ("N ANDI RAWAT" -> "NANDI RAWAT")
- Tables: Parse each row even if columns are misaligned, text between [TABLE] and [/TABLE] tags is tabular
- Be thorough: Check headers, footers, tables, summaries, signatures, stamps, and side notes`

const billSchemaHint = `{
  "hospital_name": "string or null",
  "total_amount": "number or null (without currency symbols)",
  "date_of_service": "string in YYYY-MM-DD format or null",
  "patient_name": "string or null",
  "bill_number": "string or null",
  "line_items": "array of {description, quantity, rate, amount} objects or empty array"
}`

const dischargeSystemPrompt = `You are a medical records data extraction specialist.
Extract structured information from hospital discharge summaries.

Focus on:
- Patient full name
- Primary diagnosis or condition
- Admission date
- Discharge date
- Treating physician name
- Medical procedures performed
- Prescribed medications

Maintain medical accuracy and extract dates in consistent format.`

const dischargeSchemaHint = `{
  "patient_name": "string or null",
  "diagnosis": "string or null",
  "admission_date": "string in YYYY-MM-DD format or null",
  "discharge_date": "string in YYYY-MM-DD format or null",
  "treating_physician": "string or null",
  "procedures": "array of strings or empty array",
  "medications": "array of strings or empty array"
}`

const idCardSystemPrompt = `You are an insurance document data extraction specialist.
Extract structured information from insurance ID cards and policy documents.

Focus on:
- Policy holder name
- Policy/member number
- Insurance provider/company name
- Coverage details or plan type
- Validity dates (start and end)

Extract all identifying information accurately.`

const idCardSchemaHint = `{
  "policy_holder_name": "string or null",
  "policy_number": "string or null",
  "insurance_provider": "string or null",
  "coverage_details": "string or null",
  "valid_from": "string in YYYY-MM-DD format or null",
  "valid_until": "string in YYYY-MM-DD format or null"
}`

// buildBillPrompt assembles the bill extraction prompt. Documents over
// maxChars are sampled around detected [TABLE] boundaries, or head+tail when
// no tables were marked, so the totals section near the end survives.
func buildBillPrompt(text, filename string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 15000
	}
	originalLen := len(text)
	sampled := text

	if originalLen > maxChars {
		tableStart := strings.Index(text, "[TABLE]")
		tableEnd := strings.LastIndex(text, "[/TABLE]")
		if tableStart != -1 && tableEnd != -1 {
			header := headRunes(text[:tableStart], 3000)
			footer := tailRunes(text[tableEnd+len("[/TABLE]"):], 2000)
			sampled = header + "\n\n" + text[tableStart:tableEnd+len("[/TABLE]")] + "\n\n" + footer
		} else {
			sampled = headRunes(text, 8000) + "\n\n... [middle section omitted] ...\n\n" + tailRunes(text, 7000)
		}
	}

	return fmt.Sprintf(`Extract structured billing data from this hospital bill.

Filename: %s
Original Length: %d characters

---BEGIN DOCUMENT---
%s
---END DOCUMENT---

Extraction guidance:
- Hospital Name: filename hints first, then header/footer/letterhead
- Total Amount: find ALL numbers near "Total", "Grand Total", "Net Payable", "Amount Due", "Final Bill" and take the LARGEST
- Bill Number: "Bill No", "Invoice No", "Receipt No", "IPID", "Claim Number", usually in the header
- Patient Name: after "Patient Name:", "Patient:", "Name:", often near "Age:" or "Gender:"
- Date of Service: prefer "Bill Date" or "Date of Service" over "Print Date", convert to YYYY-MM-DD
- Line Items: parse the itemized billing table row by row, up to 50 items
- Use null ONLY when a field is genuinely absent after exhaustive search`, filename, originalLen, sampled)
}

// buildDischargePrompt assembles the discharge extraction prompt. Long
// documents are sampled from a located "discharge summary" heading, else
// head+tail.
func buildDischargePrompt(text, filename string) string {
	sampled := text
	if len(text) > 10000 {
		lower := strings.ToLower(text)
		pos := strings.Index(lower, "discharge summary")
		if pos > 0 {
			sampled = headRunes(text[pos:], 5000)
		} else {
			sampled = headRunes(text, 2000) + "\n\n... [middle] ...\n\n" + tailRunes(text, 5000)
		}
	}

	return fmt.Sprintf(`Extract all relevant information from this medical discharge summary:

Filename: %s
Content:
%s

Extraction guidance:
- Look INSIDE [TABLE]...[/TABLE] sections for patient information and medical data
- Patient Name: "Patient:", "Name:", "Mr.", "Mrs." patterns, often in first table rows
- Diagnosis: "Diagnosis:", "Primary Diagnosis:", "Final Diagnosis:", "Condition:"
- Admission Date: "Admission Date:", "Admit Date:", "Date of Admission:" - convert to YYYY-MM-DD
- Discharge Date: "Discharge Date:", "Date of Discharge:" - convert to YYYY-MM-DD
- Treating Physician: "Consultant:", "Doctor:", "Physician:", "Surgeon:", "Dr." titles
- Procedures: "Surgery:", "Procedure:", "Operation:", "Treatment:" sections
- Medications: "Medications:", "Prescribed:", "Drugs:", "Medicine:" sections
- Extract even partial information - don't leave fields null if you find ANY related data`, filename, sampled)
}

// buildIDCardPrompt assembles the ID card extraction prompt over the first
// 2000 characters; cards are short and the remainder is boilerplate.
func buildIDCardPrompt(text, filename string) string {
	text = headRunes(text, 2000)
	return fmt.Sprintf(`Extract all relevant information from this insurance ID card:

Filename: %s
Content:
%s

Important:
- Use YYYY-MM-DD format for dates
- Extract policy/member numbers exactly as shown
- If information is not clearly stated, use null`, filename, text)
}

// headRunes keeps the first n bytes of s, cut back to a rune boundary.
func headRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// tailRunes keeps the last n bytes of s, advanced to a rune boundary.
func tailRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
