package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

const (
	DefaultServerAddress   = "localhost:8000"
	DefaultUpstreamBaseURL = "https://restcountries.com/v3.1"
	DefaultUpstreamTimeout = 10 * time.Second
)

type Config struct {
	ServerAddress   string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	LogLevel        string
	FileStoragePath string
	DSN             string
	DBDriver        string
	MigrationsDir   string
}

// ParseFlags читает флаги командной строки, переменные окружения имеют приоритет над флагами.
func ParseFlags() *Config {
	cfg, err := Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

func Parse(args []string) (*Config, error) {
	config := &Config{}

	fs := flag.NewFlagSet("finder", flag.ContinueOnError)
	fs.StringVar(&config.ServerAddress, "a", DefaultServerAddress, "HTTP server address")
	fs.StringVar(&config.UpstreamBaseURL, "u", DefaultUpstreamBaseURL, "restcountries API base URL")
	fs.DurationVar(&config.UpstreamTimeout, "t", DefaultUpstreamTimeout, "timeout for one upstream request")
	fs.StringVar(&config.LogLevel, "l", "info", "log level")
	fs.StringVar(&config.FileStoragePath, "f", "", "path of the lookup history file")
	fs.StringVar(&config.DSN, "d", "", "PostgreSQL DSN for the lookup history")
	fs.StringVar(&config.DBDriver, "driver", "pgx", "database/sql driver: pgx or postgres")
	fs.StringVar(&config.MigrationsDir, "m", "migrations", "goose migrations directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envAddr := os.Getenv("SERVER_ADDRESS"); envAddr != "" {
		config.ServerAddress = envAddr
	}
	if envURL := os.Getenv("UPSTREAM_BASE_URL"); envURL != "" {
		config.UpstreamBaseURL = envURL
	}
	if envTimeout := os.Getenv("UPSTREAM_TIMEOUT"); envTimeout != "" {
		d, err := time.ParseDuration(envTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", envTimeout, err)
		}
		config.UpstreamTimeout = d
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		config.LogLevel = envLevel
	}
	if envPath, ok := os.LookupEnv("FILE_STORAGE_PATH"); ok {
		config.FileStoragePath = envPath
	}
	if envDSN := os.Getenv("DATABASE_DSN"); envDSN != "" {
		config.DSN = envDSN
	}
	if envDriver := os.Getenv("DATABASE_DRIVER"); envDriver != "" {
		config.DBDriver = envDriver
	}
	if envDir := os.Getenv("MIGRATIONS_DIR"); envDir != "" {
		config.MigrationsDir = envDir
	}

	if config.UpstreamTimeout < 0 {
		return nil, fmt.Errorf("upstream timeout must not be negative: %s", config.UpstreamTimeout)
	}
	switch config.DBDriver {
	case "pgx", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.DBDriver)
	}

	return config, nil
}
