package core

import "context"

// Certificate is a stored certificate record.
type Certificate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	ImageData string `json:"image_data"`
}

// CertificatePayload is an incoming, not yet validated certificate.
// Pointer fields distinguish an absent (or null) field from an empty one.
type CertificatePayload struct {
	Name      *string `json:"name"`
	Code      *string `json:"code"`
	ImageData *string `json:"image_data"`
}

// Certificate converts a validated payload into a record without an ID.
// It must only be called after ValidateSingle or ValidateBatchItem passed.
func (p CertificatePayload) Certificate() Certificate {
	return Certificate{
		Name:      *p.Name,
		Code:      *p.Code,
		ImageData: *p.ImageData,
	}
}

// Store is the persistence contract for certificate records.
//
// Implementations must enforce code uniqueness in the storage engine itself
// and report a violation as ErrDuplicateCode; ExistsByCode is only a pre-check
// and cannot see concurrent writers.
type Store interface {
	// InsertOne persists c and returns the assigned surrogate ID.
	InsertOne(ctx context.Context, c Certificate) (int64, error)

	// InsertMany persists certs in one commit and returns the number written.
	InsertMany(ctx context.Context, certs []Certificate) (int, error)

	// FindByCode returns ErrNotFound when no record has code.
	FindByCode(ctx context.Context, code string) (Certificate, error)

	// ExistsByCode reports whether a record with code is stored.
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ImportResult summarizes one bulk import.
type ImportResult struct {
	ImportID         string `json:"import_id"`
	Received         int    `json:"received"`
	Added            int    `json:"added"`
	SkippedInvalid   int    `json:"skipped_invalid"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
}
