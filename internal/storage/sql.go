package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// SQLConfig holds relational database settings.
type SQLConfig struct {
	Driver string // sqlite, postgres, mysql

	// DSN, when set, is passed to the driver as-is and the discrete
	// connection fields below are ignored.
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // postgres only

	// FilePath is the sqlite database file. Relative paths are resolved
	// against the data directory.
	// Default: tokens.db
	FilePath string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // minutes

	// SlowThreshold is the query duration above which statements are
	// logged at warn level.
	// Default: 200ms
	SlowThreshold string
}

// DefaultSQLConfig returns the default SQL configuration.
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		Driver:        DriverSQLite,
		FilePath:      "tokens.db",
		SSLMode:       "disable",
		MaxIdleConns:  2,
		MaxOpenConns:  10,
		SlowThreshold: "200ms",
	}
}

// dialector builds the gorm dialector for cfg.
func (cfg SQLConfig) dialector(dataDir string) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
			)
		}
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil

	case DriverMySQL:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
			)
		}
		return mysql.Open(dsn), nil

	case DriverSQLite, "":
		path := cfg.DSN
		if path == "" {
			path = cfg.FilePath
			if path == "" {
				path = "tokens.db"
			}
			if !filepath.IsAbs(path) && dataDir != "" {
				path = filepath.Join(dataDir, path)
			}
		}
		return sqlite.Open(path), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// OpenSQL opens a gorm connection for cfg and configures the pool.
func OpenSQL(cfg SQLConfig, dataDir string, log logger.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logger.Default()
	}

	dialector, err := cfg.dialector(dataDir)
	if err != nil {
		return nil, err
	}

	slow, err := time.ParseDuration(cfg.SlowThreshold)
	if err != nil || cfg.SlowThreshold == "" {
		slow = 200 * time.Millisecond
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, slow),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	switch {
	case db.Dialector.Name() == DriverSQLite:
		// sqlite allows one writer; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	log.Info("sql database opened", "driver", db.Dialector.Name())
	return db, nil
}

// tokenRow is the persisted form of a token record.
type tokenRow struct {
	Token     string `gorm:"primaryKey;size:64"`
	Flags     uint32 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (tokenRow) TableName() string {
	return "tokens"
}

func (r tokenRow) record() domain.TokenRecord {
	return domain.TokenRecord{Name: r.Token, Flags: domain.Flags(r.Flags)}
}

// SQLStore is a token store on a relational database.
type SQLStore struct {
	db     *gorm.DB
	logger logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewSQLStore migrates the tokens table and returns a store on db.
func NewSQLStore(db *gorm.DB, log logger.Logger) (*SQLStore, error) {
	if log == nil {
		log = logger.Default()
	}
	if err := db.AutoMigrate(&tokenRow{}); err != nil {
		return nil, fmt.Errorf("sql: migrate: %w", err)
	}
	return &SQLStore{db: db, logger: log}, nil
}

// Exists reports whether name is stored.
func (s *SQLStore) Exists(ctx context.Context, name string) (bool, error) {
	db, release, err := s.conn(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	found, err := rowExists(db, name)
	if err != nil {
		return false, fmt.Errorf("sql: exists: %w", err)
	}
	return found, nil
}

func rowExists(db *gorm.DB, name string) (bool, error) {
	var count int64
	if err := db.Model(&tokenRow{}).Where("token = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert stores a new record.
func (s *SQLStore) Insert(ctx context.Context, name string, flags domain.Flags) error {
	db, release, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = db.Create(&tokenRow{Token: name, Flags: uint32(flags)}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrTokenExists.WithDetails(name)
		}
		return fmt.Errorf("sql: insert: %w", err)
	}
	return nil
}

// UpdateFlags replaces the flags of a stored record.
func (s *SQLStore) UpdateFlags(ctx context.Context, name string, flags domain.Flags) error {
	db, release, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer release()

	res := db.Model(&tokenRow{}).Where("token = ?", name).Update("flags", uint32(flags))
	if res.Error != nil {
		return fmt.Errorf("sql: update: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the values did not change.
	found, err := rowExists(db, name)
	if err != nil {
		return fmt.Errorf("sql: update: %w", err)
	}
	if !found {
		return domain.ErrTokenNotFound.WithDetails(name)
	}
	return nil
}

// Upsert inserts or updates the record for name in one transaction. The
// insert does nothing on conflict, so only the statement that adds the row
// reports created, even when callers race on the same name.
func (s *SQLStore) Upsert(ctx context.Context, name string, flags domain.Flags) (bool, error) {
	db, release, err := s.conn(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	var created bool
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoNothing: true,
		}).Create(&tokenRow{Token: name, Flags: uint32(flags)})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			created = true
			return nil
		}
		return tx.Model(&tokenRow{}).Where("token = ?", name).Update("flags", uint32(flags)).Error
	})
	if err != nil {
		return false, fmt.Errorf("sql: upsert: %w", err)
	}
	return created, nil
}

// Get retrieves a record by name.
func (s *SQLStore) Get(ctx context.Context, name string) (*domain.TokenRecord, error) {
	db, release, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var row tokenRow
	if err := db.First(&row, "token = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound.WithDetails(name)
		}
		return nil, fmt.Errorf("sql: get: %w", err)
	}

	rec := row.record()
	return &rec, nil
}

// List calls fn for every record whose name starts with prefix. Records
// are sorted bytewise, independent of the database collation. fn must not
// call Close.
func (s *SQLStore) List(ctx context.Context, prefix string, fn func(domain.TokenRecord) bool) error {
	db, release, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer release()

	var rows []tokenRow
	q := db.Model(&tokenRow{})
	if prefix != "" {
		q = q.Where("token LIKE ? ESCAPE '!'", escapeLike(prefix)+"%")
	}
	if err := q.Find(&rows).Error; err != nil {
		return fmt.Errorf("sql: list: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Token < rows[j].Token })
	for _, row := range rows {
		if !strings.HasPrefix(row.Token, prefix) {
			continue
		}
		if !fn(row.record()) {
			break
		}
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// conn holds mu for reading until release is called, so Close cannot
// shut the pool while a statement runs.
func (s *SQLStore) conn(ctx context.Context) (db *gorm.DB, release func(), err error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		s.mu.RUnlock()
		return nil, nil, err
	}
	return s.db.WithContext(ctx), s.mu.RUnlock, nil
}

// RegisterMetrics registers connection pool statistics.
func (s *SQLStore) RegisterMetrics(reg prometheus.Registerer) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sql: register metrics: %w", err)
	}
	if err := reg.Register(collectors.NewDBStatsCollector(sqlDB, "artifact")); err != nil {
		return fmt.Errorf("sql: register metrics: %w", err)
	}
	return nil
}

// Close closes the connection pool. It is safe to call more than once.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sql: close: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("sql: close: %w", err)
	}
	return nil
}

// gormLogger routes gorm's log output to logger.Logger. Statements are
// logged at debug, slow statements at warn.
type gormLogger struct {
	logger        logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log logger.Logger, slow time.Duration) *gormLogger {
	return &gormLogger{
		logger:        log.With("component", "gorm"),
		level:         gormlogger.Info,
		slowThreshold: slow,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	nl := *l
	nl.level = level
	return &nl
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.Error("sql statement failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		l.logger.Warn("slow sql statement", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Debug("sql statement", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
