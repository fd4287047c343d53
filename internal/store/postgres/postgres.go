// Package postgres implements core.Store on PostgreSQL using a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/certvault/internal/config"
	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/JonMunkholm/certvault/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS certificates (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL UNIQUE,
	image_data TEXT NOT NULL
)`

const (
	insertCertificate = `INSERT INTO certificates (name, code, image_data) VALUES ($1, $2, $3) RETURNING id`
	selectByCode      = `SELECT id, name, code, image_data FROM certificates WHERE code = $1`
	existsByCode      = `SELECT EXISTS (SELECT 1 FROM certificates WHERE code = $1)`
)

var copyColumns = []string{"name", "code", "image_data"}

// DBTX is the subset of pgxpool.Pool and pgx.Tx the queries need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Store is a PostgreSQL-backed core.Store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// PoolConfig builds the pgxpool configuration from cfg.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	return poolConfig, nil
}

// New connects to the database described by cfg and verifies the connection.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, poolConfig, logger)
}

// NewWithConfig connects using an already prepared pool configuration.
func NewWithConfig(ctx context.Context, poolConfig *pgxpool.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("connected to database", "name", databaseName(poolConfig.ConnString()))
	return &Store{pool: pool, logger: logger}, nil
}

func databaseName(connString string) string {
	u, err := url.Parse(connString)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// Migrate creates the certificates table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate certificates: %w", err)
	}
	return nil
}

// InsertOne inserts c and returns its new ID.
func (s *Store) InsertOne(ctx context.Context, c core.Certificate) (int64, error) {
	return insertOne(ctx, s.pool, c)
}

func insertOne(ctx context.Context, db DBTX, c core.Certificate) (int64, error) {
	var id int64
	if err := db.QueryRow(ctx, insertCertificate, c.Name, c.Code, c.ImageData).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// InsertMany copies certs into the table inside one transaction.
func (s *Store) InsertMany(ctx context.Context, certs []core.Certificate) (int, error) {
	if len(certs) == 0 {
		return 0, nil
	}

	var written int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		n, err := copyCertificates(ctx, tx, certs)
		written = n
		return err
	})
	if err != nil {
		return 0, translate(err)
	}
	return int(written), nil
}

func copyCertificates(ctx context.Context, db DBTX, certs []core.Certificate) (int64, error) {
	return db.CopyFrom(ctx,
		pgx.Identifier{"certificates"},
		copyColumns,
		pgx.CopyFromSlice(len(certs), func(i int) ([]any, error) {
			c := certs[i]
			return []any{c.Name, c.Code, c.ImageData}, nil
		}),
	)
}

// FindByCode returns the certificate stored under code.
func (s *Store) FindByCode(ctx context.Context, code string) (core.Certificate, error) {
	var c core.Certificate
	err := s.pool.QueryRow(ctx, selectByCode, code).Scan(&c.ID, &c.Name, &c.Code, &c.ImageData)
	if err != nil {
		return core.Certificate{}, translate(err)
	}
	return c, nil
}

// ExistsByCode reports whether code is stored.
func (s *Store) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, existsByCode, code).Scan(&exists); err != nil {
		return false, translate(err)
	}
	return exists, nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// translate maps pgx errors onto core sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return core.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", core.ErrDuplicateCode, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
