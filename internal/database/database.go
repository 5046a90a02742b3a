package database

import (
	"log/slog"

	"github.com/karloscodes/cartridge/cache"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"landkit/internal/clicks"
	"landkit/internal/config"
	"landkit/internal/landings"
	"landkit/internal/leads"
	"landkit/internal/templates"
	"landkit/internal/users"
)

// DBManager wraps cartridge's sqlite.Manager with landkit-specific migration methods.
type DBManager struct {
	*sqlite.Manager
	logger *slog.Logger
}

// NewDBManager creates a new database manager using cartridge's sqlite.Manager.
func NewDBManager(cfg *config.Config, logger *slog.Logger) *DBManager {
	sqliteCfg := sqlite.Config{
		Path:         cfg.DatabaseName,
		MaxOpenConns: cfg.GetMaxOpenConns(),
		MaxIdleConns: cfg.GetMaxIdleConns(),
		Logger:       logger,
		EnableWAL:    true,
		TxImmediate:  true,
		BusyTimeout:  5000,
	}

	return &DBManager{
		Manager: sqlite.NewManager(sqliteCfg),
		logger:  logger,
	}
}

// Init initializes the database connection.
func (dm *DBManager) Init() error {
	_, err := dm.Manager.Connect()
	return err
}

// MigrateDatabase runs landkit-specific migrations and backfills the
// default form on landings that predate mandatory forms.
func (dm *DBManager) MigrateDatabase() error {
	db := dm.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	// Run migrations in a transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&cache.CacheRecord{},
			&users.User{},
			&templates.Template{},
			&landings.Landing{},
			&leads.Lead{},
			&clicks.ProductClick{},
		)
	})
	if err != nil {
		dm.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	if err := dm.CheckpointWAL("FULL"); err != nil {
		dm.logger.Warn("Failed to checkpoint WAL after migration", slog.Any("error", err))
	}

	updated, err := landings.BackfillDefaultForms(db, dm.logger)
	if err != nil {
		dm.logger.Error("Failed to backfill landing forms", slog.Any("error", err))
		return err
	}
	if updated > 0 {
		dm.logger.Info("Backfilled default contact forms", slog.Int("landings", updated))
	}

	dm.logger.Info("Database migration completed successfully")
	return nil
}
