// Package config loads connection and output settings from an optional config file,
// a .env file and CHURN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBatchSize = 10000
	// MaxBatchSize keeps a 5-column multi-row insert under PostgreSQL's 65535 bind parameters.
	MaxBatchSize = 13000
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
	Load     LoadConfig     `mapstructure:"load"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type DatabaseConfig struct {
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoadConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// envKeys maps config keys to the environment variables operators set.
var envKeys = map[string]string{
	"database.name":     "CHURN_DB",
	"database.user":     "CHURN_DB_USER",
	"database.password": "CHURN_DB_PASS",
	"database.host":     "CHURN_DB_HOST",
	"database.port":     "CHURN_DB_PORT",
	"database.sslmode":  "CHURN_DB_SSLMODE",
	"output.dir":        "CHURN_OUTPUT_DIR",
	"load.batch_size":   "CHURN_BATCH_SIZE",
	"http.addr":         "CHURN_HTTP_ADDR",
}

// New returns a viper instance with defaults and env bindings applied. The CLI binds
// its flags onto the same instance before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("database.name", "churn")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("output.dir", "output")
	v.SetDefault("load.batch_size", DefaultBatchSize)
	v.SetDefault("http.addr", ":8080")

	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads .env (if present) and the optional config file, then validates. A missing
// .env is not an error; a missing explicit config file is.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	_ = godotenv.Load()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks connection parameters before anything touches storage.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Database.Name) == "" {
		problems = append(problems, "database name is required (CHURN_DB)")
	}
	if strings.TrimSpace(c.Database.User) == "" {
		problems = append(problems, "database user is required (CHURN_DB_USER)")
	}
	if strings.TrimSpace(c.Database.Host) == "" {
		problems = append(problems, "database host is required (CHURN_DB_HOST)")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		problems = append(problems, fmt.Sprintf("database port %d out of range (CHURN_DB_PORT)", c.Database.Port))
	}
	if c.Load.BatchSize < 1 || c.Load.BatchSize > MaxBatchSize {
		problems = append(problems, fmt.Sprintf("batch size %d must be between 1 and %d (CHURN_BATCH_SIZE)",
			c.Load.BatchSize, MaxBatchSize))
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		problems = append(problems, "output dir is required (CHURN_OUTPUT_DIR)")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DSN renders a lib/pq connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   d.Host + ":" + strconv.Itoa(d.Port),
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Redacted is safe to log.
func (d DatabaseConfig) Redacted() string {
	return fmt.Sprintf("%s@%s:%d/%s", d.User, d.Host, d.Port, d.Name)
}
