package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pointsbot/pkg/db"

	"github.com/BurntSushi/toml"
)

var (
	ErrConfigToken   = errors.New("telegram token is required")
	ErrConfigAdminID = errors.New("admin id must be a positive telegram user id")
)

type Config struct {
	Server struct {
		Host    string
		Port    int
		IsDevel bool
	}
	Telegram struct {
		Token   string
		AdminID int64
		Debug   bool
	}
	Store struct {
		Driver string
		Path   string
	}
	Intake struct {
		SessionTTL time.Duration
	}
}

// DefaultConfig returns the configuration used for values absent from the file.
func DefaultConfig() Config {
	var cfg Config
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8090
	cfg.Store.Driver = db.DriverFile
	cfg.Store.Path = "db.json"
	cfg.Intake.SessionTTL = 24 * time.Hour

	return cfg
}

// LoadConfig reads the TOML file at path (if it exists) over the defaults and
// applies environment overrides. The result is validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err = toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to decode config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("TOKEN"); ok {
		c.Telegram.Token = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv("ADMIN_ID"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ADMIN_ID=%q", ErrConfigAdminID, v)
		}
		c.Telegram.AdminID = id
	}

	if v, ok := os.LookupEnv("STORE_DRIVER"); ok {
		c.Store.Driver = v
	}
	if v, ok := os.LookupEnv("DB_PATH"); ok {
		c.Store.Path = v
	}

	return nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrConfigToken
	}
	if c.Telegram.AdminID <= 0 {
		return ErrConfigAdminID
	}

	switch c.Store.Driver {
	case db.DriverFile, db.DriverBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for driver %q", c.Store.Driver)
		}
	case db.DriverMemory:
	default:
		return fmt.Errorf("%w: %q", db.ErrUnknownDriver, c.Store.Driver)
	}

	if c.Intake.SessionTTL < 0 {
		return errors.New("intake session ttl must not be negative")
	}

	return nil
}
