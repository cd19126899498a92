package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kleinpdf/internal/common"
)

// Environment variables read at startup. A .env file in the working
// directory is loaded first when present.
const (
	EnvAppDataDir = "KLEINPDF_APP_DATA_DIR"
	EnvWorkingDir = "KLEINPDF_WORKING_DIR"
	EnvDebug      = "KLEINPDF_DEBUG"
)

const databaseFileName = "database.sqlite3"

// Config holds application configuration
type Config struct {
	WorkingDir    string
	DatabasePath  string
	AppDataDir    string
	MaxBatchFiles int
	Debug         bool
	Logger        *zap.SugaredLogger
}

// New creates a new configuration instance
func New() (*Config, error) {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		MaxBatchFiles: common.MaxBatchFiles,
		Debug:         envBool(EnvDebug),
	}

	logger, err := NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	cfg.Logger = logger

	if err := cfg.setupDirectories(); err != nil {
		return nil, err
	}

	cfg.Logger.Infow("Configuration loaded",
		"working_dir", cfg.WorkingDir,
		"app_data_dir", cfg.AppDataDir,
		"debug", cfg.Debug)

	return cfg, nil
}

// NewLogger builds a JSON production logger, or a console development logger
// when debug is set.
func NewLogger(debug bool) (*zap.SugaredLogger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func (c *Config) setupDirectories() error {
	// Set up working directory (result payloads)
	c.WorkingDir = os.Getenv(EnvWorkingDir)
	if c.WorkingDir == "" {
		c.WorkingDir = filepath.Join(os.TempDir(), "kleinpdf")
	}
	if err := os.MkdirAll(c.WorkingDir, common.DefaultFilePermissions); err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}

	// Set up app data directory (database, settings)
	c.AppDataDir = os.Getenv(EnvAppDataDir)
	if c.AppDataDir == "" {
		c.AppDataDir = defaultAppDataDir()
	}
	if err := os.MkdirAll(c.AppDataDir, common.DefaultFilePermissions); err != nil {
		return fmt.Errorf("create app data directory: %w", err)
	}

	c.DatabasePath = filepath.Join(c.AppDataDir, databaseFileName)
	return nil
}

// defaultAppDataDir returns the per-user configuration directory, falling back
// to the macOS location the app has always used.
func defaultAppDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "KleinPDF")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, "Library", "Application Support", "KleinPDF")
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
