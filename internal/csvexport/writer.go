package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"claimcheck/internal/domain"
)

var header = []string{
	"filename",
	"document_type",
	"confidence",
	"patient_name",
	"hospital_name",
	"total_amount",
	"date_of_service",
	"bill_number",
	"diagnosis",
	"admission_date",
	"discharge_date",
	"treating_physician",
	"policy_number",
	"insurance_provider",
}

// WriteRecords writes structured records as CSV. A UTF-8 BOM is emitted first
// so spreadsheet tools pick up the encoding.
func WriteRecords(w io.Writer, records []domain.StructuredRecord) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("csvexport.WriteRecords: bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csvexport.WriteRecords: header: %w", err)
	}
	for i := range records {
		if err := cw.Write(recordRow(&records[i])); err != nil {
			return fmt.Errorf("csvexport.WriteRecords: row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvexport.WriteRecords: flush: %w", err)
	}
	return nil
}

func recordRow(r *domain.StructuredRecord) []string {
	row := make([]string, len(header))
	row[0] = r.Filename
	row[1] = string(r.DocumentType)
	row[2] = fmt.Sprintf("%.2f", r.Confidence)

	if name, ok := r.PatientName(); ok {
		row[3] = name
	}
	if r.Bill != nil {
		row[4] = strValue(r.Bill.HospitalName)
		if r.Bill.TotalAmount != nil {
			row[5] = fmt.Sprintf("%.2f", *r.Bill.TotalAmount)
		}
		row[6] = strValue(r.Bill.DateOfService)
		row[7] = strValue(r.Bill.BillNumber)
	}
	if r.Discharge != nil {
		row[8] = strValue(r.Discharge.Diagnosis)
		row[9] = strValue(r.Discharge.AdmissionDate)
		row[10] = strValue(r.Discharge.DischargeDate)
		row[11] = strValue(r.Discharge.TreatingPhysician)
	}
	if r.IDCard != nil {
		row[12] = strValue(r.IDCard.PolicyNumber)
		row[13] = strValue(r.IDCard.InsuranceProvider)
	}
	return row
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
