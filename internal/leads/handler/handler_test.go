package handler

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"whatsapp_crm_backend/internal/leads/domain"
	"whatsapp_crm_backend/internal/leads/repository"
)

func TestCsvRecordMatchesHeader(t *testing.T) {
	row := repository.ExportRow{
		Name:         "Ada Vries",
		Email:        "ada@example.com",
		Phone:        "+31612345678",
		Company:      "Vries BV",
		Intent:       domain.IntentPricingInquiry,
		Score:        63,
		Status:       domain.StatusQualified,
		MessageCount: 4,
		CreatedAt:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	record := csvRecord(row)
	if len(record) != len(exportHeader) {
		t.Fatalf("record has %d fields, header has %d", len(record), len(exportHeader))
	}

	want := []string{
		"Ada Vries", "ada@example.com", "+31612345678", "Vries BV",
		"pricing_inquiry", "63", "qualified", "4", "2025-06-15T12:00:00Z",
	}
	for i, field := range want {
		if record[i] != field {
			t.Fatalf("field %q: expected %q, got %q", exportHeader[i], field, record[i])
		}
	}
}

func TestCsvRecordQuotesEmbeddedCommas(t *testing.T) {
	row := repository.ExportRow{
		Name:      "Vries, Ada",
		Intent:    domain.IntentInquiry,
		Status:    domain.StatusNew,
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvRecord(row)); err != nil {
		t.Fatalf("write: %v", err)
	}
	writer.Flush()

	reader := csv.NewReader(&buf)
	parsed, err := reader.Read()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if parsed[0] != "Vries, Ada" {
		t.Fatalf("expected name round-tripped intact, got %q", parsed[0])
	}
}
