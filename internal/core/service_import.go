package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/certvault/internal/logging"
	"github.com/google/uuid"
)

// ImportCertificates adds every acceptable item of a bulk request in one
// store write.
//
// Items missing a field are skipped. Items whose code is already stored, or
// already accepted earlier in the same list, are skipped too: the first
// occurrence in input order wins. Skips are counted in the result and are not
// errors. When nothing is left the store is not touched and Added is 0.
//
// The per-item existence check cannot see concurrent imports. If another
// writer stores one of the accepted codes first, the store rejects the whole
// write with ErrDuplicateCode.
func (s *Service) ImportCertificates(ctx context.Context, items []CertificatePayload) (ImportResult, error) {
	if s.maxImportItems > 0 && len(items) > s.maxImportItems {
		return ImportResult{}, fmt.Errorf("%d items, limit %d: %w", len(items), s.maxImportItems, ErrBatchTooLarge)
	}

	if err := s.importLimiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.importLimiter.Release()

	s.metrics.importsActive.Inc()
	defer s.metrics.importsActive.Dec()

	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}

	result := ImportResult{
		ImportID: uuid.NewString(),
		Received: len(items),
	}
	logger := logging.WithFields(ctx, "import_id", result.ImportID)
	logger.Debug("import started", "received", result.Received)

	accepted, err := s.selectImportable(ctx, items, &result)
	if err != nil {
		return result, fmt.Errorf("import %s: %w", result.ImportID, err)
	}

	s.metrics.skipped.WithLabelValues("invalid").Add(float64(result.SkippedInvalid))
	s.metrics.skipped.WithLabelValues("duplicate").Add(float64(result.SkippedDuplicate))

	if len(accepted) == 0 {
		logger.Info("import had nothing to add",
			"received", result.Received,
			"skipped_invalid", result.SkippedInvalid,
			"skipped_duplicate", result.SkippedDuplicate,
		)
		return result, nil
	}

	start := time.Now()
	n, err := s.store.InsertMany(ctx, accepted)
	s.metrics.importDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			s.metrics.conflicts.Inc()
			logger.Warn("import lost a race on a code after pre-check", "accepted", len(accepted))
		}
		return result, fmt.Errorf("import %s: %w", result.ImportID, err)
	}

	result.Added = n
	s.metrics.created.WithLabelValues("bulk").Add(float64(n))
	logger.Info("import completed",
		"received", result.Received,
		"added", result.Added,
		"skipped_invalid", result.SkippedInvalid,
		"skipped_duplicate", result.SkippedDuplicate,
	)
	return result, nil
}

// selectImportable filters items down to the records to write, updating the
// skip counters in result.
func (s *Service) selectImportable(ctx context.Context, items []CertificatePayload, result *ImportResult) ([]Certificate, error) {
	accepted := make([]Certificate, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if !ValidateBatchItem(item) {
			result.SkippedInvalid++
			continue
		}
		cert := item.Certificate()

		// Earlier in this batch; not committed yet, so the store cannot know.
		if _, dup := seen[cert.Code]; dup {
			result.SkippedDuplicate++
			continue
		}

		exists, err := s.store.ExistsByCode(ctx, cert.Code)
		if err != nil {
			return nil, fmt.Errorf("check code %q: %w", cert.Code, err)
		}
		if exists {
			result.SkippedDuplicate++
			continue
		}

		seen[cert.Code] = struct{}{}
		accepted = append(accepted, cert)
	}

	return accepted, nil
}
