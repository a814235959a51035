package database

import (
	"fmt"
	stdlog "log"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/tudu-backend/internal/config"
	"github.com/Tomlord1122/tudu-backend/internal/domain"
)

// Postgres is the production store, accessed through GORM on top of pgx.
type Postgres struct {
	db      *gorm.DB
	name    string
	maxOpen int
}

// NewPostgres opens the connection pool described by cfg and, when
// cfg.AutoMigrate is set, creates or alters the users and todos tables.
func NewPostgres(cfg config.DatabaseConfig) (*Postgres, error) {
	gormLogger := logger.New(
		stdlog.New(log.Logger, "", 0),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		log.Info().Msg("Running database auto-migration")
		if err := db.AutoMigrate(&domain.User{}, &domain.Todo{}); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("auto-migrating schema: %w", err)
		}
	}

	return &Postgres{db: db, name: cfg.Database, maxOpen: cfg.MaxOpenConns}, nil
}

// DB returns the GORM handle for the repositories.
func (p *Postgres) DB() *gorm.DB {
	return p.db
}

func (p *Postgres) Health() map[string]string {
	sqlDB, err := p.db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Error getting DB for health check")
		return map[string]string{
			"status": "down",
			"error":  fmt.Sprintf("failed to get underlying DB for health check: %v", err),
		}
	}
	return healthStats(sqlDB, p.maxOpen)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB for closing: %w", err)
	}
	log.Info().Str("database", p.name).Msg("Closing connection pool")
	return sqlDB.Close()
}
