// Package models defines core data structures for reports, queries, and
// match results.
package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hyperjump/shirabe/internal/normalize"
)

// ErrInvalidMetadata is returned by NewReport when a metadata field name
// is rejected by the configured validator.
var ErrInvalidMetadata = errors.New("invalid metadata")

// FieldValidator inspects a metadata field name and returns an error for
// disallowed names. The rule is external policy; a nil validator accepts
// every name.
type FieldValidator func(name string) error

// AllowedFields builds a validator that accepts only the named fields.
// An empty list returns nil, which accepts everything.
func AllowedFields(names []string) FieldValidator {
	if len(names) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}
	return func(name string) error {
		if _, ok := allowed[name]; !ok {
			return errors.New("field not in allowed list")
		}
		return nil
	}
}

// Report is a stored document in normalized form. Text is always
// canonical (normalize.Text output); this is established by NewReport
// and never changes afterward.
type Report struct {
	ID        string         `json:"id" db:"id"`
	Text      string         `json:"text" db:"text"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// ReportInput carries raw text and metadata into NewReport.
type ReportInput struct {
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ReportOption configures report construction.
type ReportOption func(*reportOptions)

type reportOptions struct {
	rules     []normalize.Rule
	validator FieldValidator
}

// WithRules sets the replacement table applied ahead of punctuation
// normalization. Order is significant.
func WithRules(rules []normalize.Rule) ReportOption {
	return func(o *reportOptions) {
		o.rules = rules
	}
}

// WithFieldValidator sets the metadata field-name validator.
func WithFieldValidator(v FieldValidator) ReportOption {
	return func(o *reportOptions) {
		o.validator = v
	}
}

// NewReport builds an immutable report: metadata field names are
// validated, the metadata map is copied, and the text is normalized.
// The only failure mode is metadata validation (ErrInvalidMetadata).
func NewReport(input *ReportInput, opts ...ReportOption) (*Report, error) {
	var o reportOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.validator != nil && len(input.Metadata) > 0 {
		names := make([]string, 0, len(input.Metadata))
		for name := range input.Metadata {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := o.validator(name); err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidMetadata, name, err)
			}
		}
	}

	var meta map[string]any
	if len(input.Metadata) > 0 {
		meta = make(map[string]any, len(input.Metadata))
		for k, v := range input.Metadata {
			meta[k] = v
		}
	}

	now := time.Now()
	return &Report{
		ID:        input.ID,
		Text:      normalize.Text(input.Text, o.rules),
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
