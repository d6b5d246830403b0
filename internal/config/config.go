package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	configutil "github.com/NYCU-SDC/summer/pkg/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const DefaultSecret = "default-secret"

var ErrDatabaseURLRequired = errors.New("database_url is required")

type Config struct {
	Debug            bool          `yaml:"debug"`
	Dev              bool          `yaml:"dev"`
	Host             string        `yaml:"host"`
	Port             string        `yaml:"port"`
	BaseURL          string        `yaml:"base_url"`
	Secret           string        `yaml:"secret"`
	DatabaseURL      string        `yaml:"database_url"`
	MigrationSource  string        `yaml:"migration_source"`
	OtelCollectorUrl string        `yaml:"otel_collector_url"`
	NatsURL          string        `yaml:"nats_url"`
	AllowOrigins     []string      `yaml:"allow_origins"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

type LogBuffer struct {
	buffer []logEntry
}

type logEntry struct {
	msg  string
	err  error
	meta map[string]string
}

func NewConfigLogger() *LogBuffer {
	return &LogBuffer{}
}

func (cl *LogBuffer) Warn(msg string, err error, meta map[string]string) {
	cl.buffer = append(cl.buffer, logEntry{
		msg:  msg,
		err:  err,
		meta: meta,
	})
}

// FlushToZap replays the messages collected before the logger existed
func (cl *LogBuffer) FlushToZap(logger *zap.Logger) {
	for _, e := range cl.buffer {
		var fields []zap.Field
		if e.err != nil {
			fields = append(fields, zap.Error(e.err))
		}
		for k, v := range e.meta {
			fields = append(fields, zap.String(k, v))
		}
		logger.Warn(e.msg, fields...)
	}
	cl.buffer = nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}

	return nil
}

func Default() Config {
	return Config{
		Debug:           false,
		Dev:             false,
		Host:            "localhost",
		Port:            "8080",
		BaseURL:         "http://localhost:8080",
		Secret:          DefaultSecret,
		MigrationSource: "file://internal/database/migrations",
		AllowOrigins:    []string{"*"},
		AccessTokenTTL:  15 * time.Minute,
		RequestTimeout:  30 * time.Second,
	}
}

// Load builds the configuration from defaults, config.yaml, .env, environment
// variables and command line flags, later sources overriding earlier ones.
func Load() (Config, *LogBuffer) {
	logger := NewConfigLogger()

	config := Default()

	var err error

	config, err = FromFile("config.yaml", config)
	if err != nil {
		logger.Warn("Failed to load config from file", err, map[string]string{"path": "config.yaml"})
	}

	config, err = FromEnv(config, logger)
	if err != nil {
		logger.Warn("Failed to load config from env", err, map[string]string{"path": ".env"})
	}

	config, err = FromFlags(config)
	if err != nil {
		logger.Warn("Failed to load config from flags", err, nil)
	}

	return config, logger
}

func FromFile(filePath string, config Config) (Config, error) {
	if _, err := os.Stat(filePath); err != nil {
		return config, err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return config, err
	}

	fileConfig := Config{}
	if err := yaml.Unmarshal(raw, &fileConfig); err != nil {
		return config, err
	}

	return merge(config, fileConfig)
}

func FromEnv(config Config, logger *LogBuffer) (Config, error) {
	if err := godotenv.Overload(); err != nil {
		if !os.IsNotExist(err) {
			return config, err
		}
		logger.Warn("No .env file found, reading environment variables only", nil, nil)
	}

	envConfig := Config{
		Host:             os.Getenv("HOST"),
		Port:             os.Getenv("PORT"),
		BaseURL:          os.Getenv("BASE_URL"),
		Secret:           os.Getenv("SECRET"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrationSource:  os.Getenv("MIGRATION_SOURCE"),
		OtelCollectorUrl: os.Getenv("OTEL_COLLECTOR_URL"),
		NatsURL:          os.Getenv("NATS_URL"),
	}

	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		envConfig.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		envConfig.AccessTokenTTL = parseDuration(v, "ACCESS_TOKEN_TTL", logger)
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		envConfig.RequestTimeout = parseDuration(v, "REQUEST_TIMEOUT", logger)
	}

	merged, err := merge(config, envConfig)
	if err != nil {
		return config, err
	}

	// Merge skips zero values, so an explicit false has to be applied here.
	if v := os.Getenv("DEBUG"); v != "" {
		if b, ok := parseBool(v, "DEBUG", logger); ok {
			merged.Debug = b
		}
	}
	if v := os.Getenv("DEV"); v != "" {
		if b, ok := parseBool(v, "DEV", logger); ok {
			merged.Dev = b
		}
	}

	return merged, nil
}

func FromFlags(config Config) (Config, error) {
	flagConfig := Config{}

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.BoolVar(&flagConfig.Debug, "debug", false, "debug mode")
	fs.StringVar(&flagConfig.Host, "host", "", "host")
	fs.StringVar(&flagConfig.Port, "port", "", "port")
	fs.StringVar(&flagConfig.DatabaseURL, "database_url", "", "database url")
	fs.StringVar(&flagConfig.MigrationSource, "migration_source", "", "migration source")
	fs.StringVar(&flagConfig.NatsURL, "nats_url", "", "nats url")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return config, err
	}

	merged, err := merge(config, flagConfig)
	if err != nil {
		return config, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "debug" {
			merged.Debug = flagConfig.Debug
		}
	})

	return merged, nil
}

func merge(base, override Config) (Config, error) {
	merged, err := configutil.Merge[Config](&base, &override)
	if err != nil {
		return base, err
	}
	return *merged, nil
}

func parseBool(v, key string, logger *LogBuffer) (bool, bool) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("Invalid boolean in environment, ignoring", err, map[string]string{"key": key, "value": v})
		return false, false
	}
	return b, true
}

func parseDuration(v, key string, logger *LogBuffer) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("Invalid duration in environment, ignoring", err, map[string]string{"key": key, "value": v})
		return 0
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
