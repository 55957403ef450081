package faqsource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
)

// document is the wrapped form of a FAQ file: a top-level "faqs" list.
type document struct {
	FAQs []faqindex.FAQRecord `yaml:"faqs" json:"faqs"`
}

// Parse decodes a FAQ batch from YAML or JSON bytes. Both a bare list and a
// document with a top-level "faqs" key are accepted.
func Parse(data []byte) ([]faqindex.FAQRecord, error) {
	var records []faqindex.FAQRecord
	if err := yaml.Unmarshal(data, &records); err == nil && len(records) > 0 {
		return records, nil
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse faq document: %w", err)
	}
	if len(doc.FAQs) == 0 {
		return nil, fmt.Errorf("faq document contains no records")
	}
	return doc.FAQs, nil
}

// LoadFile reads and parses a FAQ file from the local filesystem.
func LoadFile(path string) ([]faqindex.FAQRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	return Parse(data)
}
