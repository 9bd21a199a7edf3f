package database

import (
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fenggwsx/ReminderBot/internal/storage"
)

// Provider lazily opens the database engine described by a connection string
// and hands out the same engine for the rest of the process.
type Provider struct {
	dsn    string
	logger zerolog.Logger

	mu     sync.Mutex
	engine *gorm.DB
}

// NewProvider returns a provider for dsn. An empty dsn disables storage.
func NewProvider(dsn string, logger zerolog.Logger) *Provider {
	return &Provider{
		dsn:    strings.TrimSpace(dsn),
		logger: logger.With().Str("component", "database").Logger(),
	}
}

// Enabled reports whether a connection string has been configured.
func (p *Provider) Enabled() bool {
	return p.dsn != ""
}

// Engine returns the cached engine, opening it on first use.
func (p *Provider) Engine() (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil {
		return p.engine, nil
	}
	if !p.Enabled() {
		return nil, storage.ErrNotConfigured
	}

	dialector, embedded, err := dialectorFor(p.dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(p.logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, &storage.Error{Op: "open", Err: err}
	}
	if embedded {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, &storage.Error{Op: "open", Err: err}
		}
		// SQLite allows a single writer; one connection also keeps :memory: databases alive.
		sqlDB.SetMaxOpenConns(1)
	}

	p.logger.Debug().Str("dialect", dialector.Name()).Msg("database engine opened")
	p.engine = db
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool, error) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Open(dsn), false, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqlite.Open(dsn[len("sqlite://"):]), true, nil
	case strings.HasPrefix(lower, "file:"):
		return sqlite.Open(dsn), true, nil
	}
	scheme := dsn
	if idx := strings.Index(dsn, "://"); idx >= 0 {
		scheme = dsn[:idx]
	}
	return nil, false, errors.Wrapf(storage.ErrNotConfigured, "unsupported connection scheme %q", scheme)
}

type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Msgf(format, args...)
}

func newGormLogger(logger zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(
		gormWriter{logger: logger.With().Str("component", "gorm").Logger()},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
