package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	// DB is the global database connection
	DB *gorm.DB
)

// Initialize opens the configured database and stores it in DB.
func Initialize(cfg *config.Config) error {
	db, err := Open(cfg.Database)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to the database described by dbCfg and configures the pool.
func Open(dbCfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(dbCfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewDBLogger(dbCfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	if dbCfg.Driver == config.DriverSQLite {
		// a single connection serializes writers and keeps SQLITE_BUSY away
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Infof("Database connection established (%s)", dbCfg.Driver)
	return db, nil
}

func dialectorFor(dbCfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbCfg.Driver {
	case config.DriverSQLite, "":
		if dir := filepath.Dir(dbCfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		logger.Infof("Opening sqlite database: %s", dbCfg.Path)
		return sqlite.Open(dbCfg.Path + "?_busy_timeout=5000&_foreign_keys=on"), nil

	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			dbCfg.Username,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
			dbCfg.Charset,
		)
		logger.Infof("Connecting to database: %s:%d/%s", dbCfg.Host, dbCfg.Port, dbCfg.DBName)
		return mysql.Open(dsn), nil

	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.Username,
			dbCfg.Password,
			dbCfg.DBName,
			dbCfg.SSLMode,
		)
		logger.Infof("Connecting to database: %s:%d/%s", dbCfg.Host, dbCfg.Port, dbCfg.DBName)
		return postgres.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// Close releases the global connection.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
