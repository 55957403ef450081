package faqsource

import "testing"

func TestParseBareList(t *testing.T) {
	data := []byte(`
- question: "How do I track my order?"
  answer: "Open the orders page."
  category: "Orders"
- question: "What payment methods are available?"
  answer: "Cards and PayPal."
`)
	records, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Category != "Orders" {
		t.Fatalf("expected category Orders, got %q", records[0].Category)
	}
}

func TestParseWrappedDocument(t *testing.T) {
	data := []byte(`
faqs:
  - question: "Can I return an item?"
    answer: "Within 30 days with a receipt."
`)
	records, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestParseJSONIsAccepted(t *testing.T) {
	data := []byte(`{"faqs":[{"question":"q","answer":"a"}]}`)
	records, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestParseEmptyDocumentFails(t *testing.T) {
	if _, err := Parse([]byte(`faqs: []`)); err == nil {
		t.Fatal("expected error for empty document")
	}
	if _, err := Parse([]byte(`{invalid`)); err == nil {
		t.Fatal("expected error for malformed input")
	}
}
