package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSqliteDSN = "sweater.db?_journal_mode=WAL&_busy_timeout=5000"
	defaultHTTPPort  = "4040"
	defaultWrapWidth = 64
)

// DefaultRelationKinds is used when no relation kinds are configured.
var DefaultRelationKinds = []string{"therefore", "because", "but", "supports", "contradicts"}

type Config struct {
	DB            DBConfig     `yaml:"db"`
	RelationKinds []string     `yaml:"relation_kinds"`
	Redis         RedisConfig  `yaml:"redis"`
	Compression   string       `yaml:"compression"`
	HTTPPort      string       `yaml:"http_port"`
	Export        ExportConfig `yaml:"export"`
	LogLevel      string       `yaml:"log_level"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig configures the export cache, an empty address disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ExportConfig struct {
	WrapWidth      int  `yaml:"wrap_width"`
	ShowReferences bool `yaml:"show_references"`
	// RelationNodes is one of none, related or all: which relations are drawn
	// as nodes of their own instead of a single labelled edge.
	RelationNodes string `yaml:"relation_nodes"`
}

// LoadConfig reads .env, then the yaml file named by SWEATER_CONFIG, then
// environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DB: DBConfig{
			Driver: DriverSqlite,
			DSN:    defaultSqliteDSN,
		},
		Compression: "gzip",
		HTTPPort:    defaultHTTPPort,
		Export: ExportConfig{
			WrapWidth:      defaultWrapWidth,
			ShowReferences: true,
			RelationNodes:  "related",
		},
		LogLevel: "info",
	}

	if path := os.Getenv("SWEATER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if len(cfg.RelationKinds) == 0 {
		cfg.RelationKinds = DefaultRelationKinds
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(level)

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DB.Driver, "SWEATER_DB_DRIVER")
	setString(&c.DB.DSN, "SWEATER_DB_DSN")
	setString(&c.Redis.Addr, "SWEATER_REDIS_ADDR")
	setString(&c.Redis.Password, "SWEATER_REDIS_PASSWORD")
	setString(&c.Compression, "SWEATER_CACHE_COMPRESSION")
	setString(&c.HTTPPort, "SWEATER_HTTP_PORT")
	setString(&c.LogLevel, "SWEATER_LOG_LEVEL")
	setString(&c.Export.RelationNodes, "SWEATER_EXPORT_RELATION_NODES")

	if kinds := os.Getenv("SWEATER_RELATION_KINDS"); kinds != "" {
		c.RelationKinds = nil
		for _, kind := range strings.Split(kinds, ",") {
			if kind = strings.TrimSpace(kind); kind != "" {
				c.RelationKinds = append(c.RelationKinds, kind)
			}
		}
	}

	if err := setInt(&c.Redis.DB, "SWEATER_REDIS_DB"); err != nil {
		return err
	}

	if err := setBool(&c.Export.ShowReferences, "SWEATER_EXPORT_SHOW_REFERENCES"); err != nil {
		return err
	}

	return setInt(&c.Export.WrapWidth, "SWEATER_EXPORT_WIDTH")
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n

	return nil
}

func setBool(dst *bool, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b

	return nil
}
