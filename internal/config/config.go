package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from the environment.
// Values from a local .env file are applied first without overriding
// variables that are already set.
type Config struct {
	Port           int           `envconfig:"PORT" default:"8000"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile        string        `envconfig:"LOG_FILE" default:""`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	MigrateOnStart bool          `envconfig:"MIGRATE_ON_START" default:"true"`
	SessionSecret  string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	SessionSecure  bool          `envconfig:"SESSION_SECURE" default:"false"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"12"`
	AdminEmail     string        `envconfig:"ADMIN_EMAIL" default:"admin@workflow.com"`
	AdminPassword  string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	RegisterRole   string        `envconfig:"REGISTER_ROLE" default:"admin"`
	Version        string        `envconfig:"VERSION" default:"dev"`
}

// MinSessionSecretLen is the shortest accepted SESSION_SECRET.
const MinSessionSecretLen = 16

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is ignored.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if len(cfg.SessionSecret) < MinSessionSecretLen {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLen)
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be positive")
	}

	return &cfg, nil
}
