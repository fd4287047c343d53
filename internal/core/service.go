package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/certvault/internal/config"
	"github.com/JonMunkholm/certvault/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Service provides the certificate operations used by the HTTP and CLI layers.
// It holds no per-request state; every method is safe for concurrent use.
type Service struct {
	store   Store
	metrics *Metrics

	importLimiter  *ImportLimiter
	importTimeout  time.Duration
	maxImportItems int
}

// NewService creates a Service backed by store. Metrics are registered with
// registry when it is non-nil.
func NewService(store Store, cfg config.ImportConfig, registry prometheus.Registerer) *Service {
	return &Service{
		store:          store,
		metrics:        NewMetrics(registry),
		importLimiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		importTimeout:  cfg.Timeout,
		maxImportItems: cfg.MaxItems,
	}
}

// AddCertificate stores exactly one certificate and returns its ID.
//
// Unlike bulk import, a duplicate code is an error here. The ExistsByCode
// pre-check gives the common case a clean error; a concurrent writer that
// slips past it is caught by the store's constraint, which also yields
// ErrDuplicateCode.
func (s *Service) AddCertificate(ctx context.Context, p CertificatePayload) (int64, error) {
	if err := ValidateSingle(p); err != nil {
		return 0, err
	}
	cert := p.Certificate()
	logger := logging.WithFields(ctx, "code", cert.Code)

	exists, err := s.store.ExistsByCode(ctx, cert.Code)
	if err != nil {
		return 0, fmt.Errorf("check code: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("add %q: %w", cert.Code, ErrDuplicateCode)
	}

	id, err := s.store.InsertOne(ctx, cert)
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			s.metrics.conflicts.Inc()
			logger.Warn("duplicate code rejected by store after pre-check")
		}
		return 0, fmt.Errorf("add %q: %w", cert.Code, err)
	}

	s.metrics.created.WithLabelValues("single").Inc()
	logger.Info("certificate created", "id", id, "image_bytes", len(cert.ImageData))
	return id, nil
}

// GetCertificate returns the certificate stored under code, or ErrNotFound.
func (s *Service) GetCertificate(ctx context.Context, code string) (Certificate, error) {
	cert, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return Certificate{}, fmt.Errorf("get %q: %w", code, err)
	}
	return cert, nil
}

// ImportLimiterStatus returns the bulk import slot usage.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.importLimiter.Status()
}

// WaitForImports blocks until running bulk imports finish or ctx ends.
// Used during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.importLimiter.WaitForDrain(ctx)
}
