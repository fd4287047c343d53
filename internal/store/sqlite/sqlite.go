// Package sqlite implements core.Store on an embedded SQLite database via gorm.
//
// The database lives in <dataDir>/certificates.db. An empty dataDir opens a
// private in-memory database, which tests use.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/JonMunkholm/certvault/internal/logging"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// FileName is the database file created inside the data directory.
const FileName = "certificates.db"

// insertBatchSize bounds the rows per INSERT statement inside one import.
const insertBatchSize = 200

// WAL lets readers run alongside the single writer; busy_timeout makes a
// writer wait for the lock instead of failing with SQLITE_BUSY.
// filePragmas are applied in order on every new file connection.
var filePragmas = []string{"busy_timeout(5000)", "journal_mode(WAL)", "foreign_keys(1)"}

// certificateRow is the gorm model for the certificates table.
type certificateRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:text;not null"`
	Code      string `gorm:"type:text;not null;uniqueIndex"`
	ImageData string `gorm:"column:image_data;type:text;not null"`
}

func (certificateRow) TableName() string { return "certificates" }

func rowFrom(c core.Certificate) certificateRow {
	return certificateRow{Name: c.Name, Code: c.Code, ImageData: c.ImageData}
}

func (r certificateRow) certificate() core.Certificate {
	return core.Certificate{ID: r.ID, Name: r.Name, Code: r.Code, ImageData: r.ImageData}
}

// Store is a SQLite-backed core.Store.
type Store struct {
	db      *gorm.DB
	logger  *slog.Logger
	dataDir string
}

// New opens (creating if needed) the database in dataDir.
// It does not create the schema; call Migrate for that.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.New(
			logging.Writer(logger, slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             500 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var dsn string
	if dataDir == "" {
		// A unique name keeps stores opened in the same process apart.
		dsn = fmt.Sprintf("file:certvault-%s?mode=memory&cache=shared", uuid.NewString())
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dsn = fileDSN(filepath.Join(dataDir, FileName))
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if dataDir == "" {
		// The in-memory database disappears with its last connection and
		// shared-cache tables lock per connection; one connection avoids both.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	logger.Debug("sqlite store opened", "data_dir", dataDir, "in_memory", dataDir == "")
	return &Store{db: db, logger: logger, dataDir: dataDir}, nil
}

// fileDSN builds a file: URI for path. The path is escaped so characters
// such as '?' or '#' in a directory name stay part of the file name.
func fileDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: url.Values{"_pragma": filePragmas}.Encode(),
	}
	return u.String()
}

// Migrate creates the certificates table and its unique index on code.
func (s *Store) Migrate(ctx context.Context) error {
	s.logger.Debug("migrating table", "table", certificateRow{}.TableName())
	if err := s.db.WithContext(ctx).AutoMigrate(&certificateRow{}); err != nil {
		return fmt.Errorf("migrate certificates: %w", err)
	}
	return nil
}

// InsertOne inserts c and returns its new ID.
func (s *Store) InsertOne(ctx context.Context, c core.Certificate) (int64, error) {
	row := rowFrom(c)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, translate(err)
	}
	return row.ID, nil
}

// InsertMany inserts certs in a single transaction. Either all rows are
// committed or none are.
func (s *Store) InsertMany(ctx context.Context, certs []core.Certificate) (int, error) {
	if len(certs) == 0 {
		return 0, nil
	}

	rows := make([]certificateRow, len(certs))
	for i, c := range certs {
		rows[i] = rowFrom(c)
	}

	var written int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.CreateInBatches(&rows, insertBatchSize)
		if result.Error != nil {
			return result.Error
		}
		written = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return int(written), nil
}

// FindByCode returns the certificate stored under code.
func (s *Store) FindByCode(ctx context.Context, code string) (core.Certificate, error) {
	var row certificateRow
	if err := s.db.WithContext(ctx).Where("code = ?", code).Take(&row).Error; err != nil {
		return core.Certificate{}, translate(err)
	}
	return row.certificate(), nil
}

// ExistsByCode reports whether code is stored.
func (s *Store) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&certificateRow{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database. An in-memory database is discarded.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm and SQLite errors onto core sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return core.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", core.ErrDuplicateCode, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Driver errors that bypassed gorm's translator.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
