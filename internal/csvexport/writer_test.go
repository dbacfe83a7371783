package csvexport_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/csvexport"
	"claimcheck/internal/domain"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestWriteRecords_BOMAndHeader(t *testing.T) {
	var buf bytes.Buffer

	err := csvexport.WriteRecords(&buf, nil)

	require.NoError(t, err)
	out := buf.Bytes()
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, out[:3])
	assert.Equal(t, "filename,document_type,confidence,patient_name,hospital_name,total_amount,date_of_service,bill_number,diagnosis,admission_date,discharge_date,treating_physician,policy_number,insurance_provider",
		strings.TrimSpace(string(out[3:])))
}

func TestWriteRecords_BillRow(t *testing.T) {
	var buf bytes.Buffer
	records := []domain.StructuredRecord{
		{
			Filename:     "apollo_bill.pdf",
			DocumentType: domain.DocTypeBill,
			Confidence:   0.9,
			Bill: &domain.BillFields{
				HospitalName:  strPtr("Apollo Hospital"),
				TotalAmount:   f64Ptr(5000),
				DateOfService: strPtr("2025-02-03"),
				PatientName:   strPtr("Rahul Sharma"),
				BillNumber:    strPtr("INV-12345"),
			},
		},
	}

	require.NoError(t, csvexport.WriteRecords(&buf, records))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	row := rows[1]
	assert.Equal(t, "apollo_bill.pdf", row[0])
	assert.Equal(t, "bill", row[1])
	assert.Equal(t, "0.90", row[2])
	assert.Equal(t, "Rahul Sharma", row[3])
	assert.Equal(t, "Apollo Hospital", row[4])
	assert.Equal(t, "5000.00", row[5])
	assert.Equal(t, "2025-02-03", row[6])
	assert.Equal(t, "INV-12345", row[7])
	assert.Equal(t, "", row[8])
}

func TestWriteRecords_MixedRecordTypes(t *testing.T) {
	var buf bytes.Buffer
	records := []domain.StructuredRecord{
		{
			Filename:     "discharge_summary.pdf",
			DocumentType: domain.DocTypeDischargeSummary,
			Confidence:   0.85,
			Discharge: &domain.DischargeFields{
				PatientName:   strPtr("Rahul Sharma"),
				Diagnosis:     strPtr("Acute appendicitis"),
				AdmissionDate: strPtr("2025-02-01"),
				DischargeDate: strPtr("2025-02-05"),
			},
		},
		{
			Filename:     "insurance_card.pdf",
			DocumentType: domain.DocTypeIDCard,
			Confidence:   0.8,
			IDCard: &domain.IDCardFields{
				PolicyHolderName:  strPtr("Rahul Sharma"),
				PolicyNumber:      strPtr("POL-99881"),
				InsuranceProvider: strPtr("Star Health"),
			},
		},
	}

	require.NoError(t, csvexport.WriteRecords(&buf, records))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	discharge := rows[1]
	assert.Equal(t, "Acute appendicitis", discharge[8])
	assert.Equal(t, "2025-02-01", discharge[9])
	assert.Equal(t, "2025-02-05", discharge[10])
	assert.Equal(t, "", discharge[12])

	card := rows[2]
	assert.Equal(t, "Rahul Sharma", card[3])
	assert.Equal(t, "POL-99881", card[12])
	assert.Equal(t, "Star Health", card[13])
}
