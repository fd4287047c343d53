package core

// validation.go checks certificate payloads for the three required fields.
//
// Only presence is checked. An empty name or image_data is accepted, and the
// code length is not enforced; the storage layer's NOT NULL and UNIQUE
// constraints are the only other rules.

import (
	"fmt"
	"strings"
)

// Required payload field names, as they appear on the wire.
const (
	FieldName      = "name"
	FieldCode      = "code"
	FieldImageData = "image_data"
)

// MissingFields returns the wire names of absent fields, in declaration order.
func (p CertificatePayload) MissingFields() []string {
	var missing []string
	if p.Name == nil {
		missing = append(missing, FieldName)
	}
	if p.Code == nil {
		missing = append(missing, FieldCode)
	}
	if p.ImageData == nil {
		missing = append(missing, FieldImageData)
	}
	return missing
}

// ValidateSingle returns an error wrapping ErrMissingFields that lists every
// absent field, or nil when all three are present.
func ValidateSingle(p CertificatePayload) error {
	if missing := p.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateBatchItem reports whether a bulk item may be imported.
// Malformed items are skipped by the importer rather than failing the batch.
func ValidateBatchItem(p CertificatePayload) bool {
	return p.Name != nil && p.Code != nil && p.ImageData != nil
}
