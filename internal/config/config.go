package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/utakatalp/epl-metrics/internal/league"
)

type Config struct {
	Elo      league.Config  `yaml:"elo"`
	Paths    PathsConfig    `yaml:"paths"`
	Postgres PostgresConfig `yaml:"postgres"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PathsConfig struct {
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
	Matches   string `yaml:"matches"`  // file name inside data_dir
	Schedule  string `yaml:"schedule"` // file name inside data_dir
	Players   string `yaml:"players"`  // file name inside data_dir
}

type PostgresConfig struct {
	DSN      string        `yaml:"dsn"` // empty disables the snapshot sink
	Timeout  time.Duration `yaml:"timeout"`
	KeepRuns int           `yaml:"keep_runs"` // 0 keeps every run
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Elo: league.DefaultConfig(),
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "outputs",
			Matches:   "elo_matches_2425.csv",
			Schedule:  "epl_2025_schedule.csv",
			Players:   "merged_players_all.csv",
		},
		Postgres: PostgresConfig{Timeout: 5 * time.Second},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file if one exists. Variables that
// are already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("EPL_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("EPL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EPL_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("EPL_OUTPUT_DIR"); v != "" {
		c.Paths.OutputDir = v
	}
}

// Validate checks that the Elo constants are finite real numbers.
func (c *Config) Validate() error {
	fields := map[string]float64{
		"elo.scaling":        c.Elo.Scaling,
		"elo.k_factor":       c.Elo.KFactor,
		"elo.initial_rating": c.Elo.InitialRating,
		"elo.home_advantage": c.Elo.HomeAdvantage,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	if c.Elo.Scaling == 0 {
		return errors.New("elo.scaling must not be zero")
	}
	return nil
}

func (p PathsConfig) MatchesPath() string  { return filepath.Join(p.DataDir, p.Matches) }
func (p PathsConfig) SchedulePath() string { return filepath.Join(p.DataDir, p.Schedule) }
func (p PathsConfig) PlayersPath() string  { return filepath.Join(p.DataDir, p.Players) }

// Output returns the path of an artifact inside the output directory.
func (p PathsConfig) Output(name string) string {
	return filepath.Join(p.OutputDir, name)
}
