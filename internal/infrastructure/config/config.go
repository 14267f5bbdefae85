package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Wikibase   WikibaseConfig   `mapstructure:"wikibase"`
	Commons    CommonsConfig    `mapstructure:"commons"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Annotation AnnotationConfig `mapstructure:"annotation"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	HTTPPort    int           `mapstructure:"http_port"`
	BaseURL     string        `mapstructure:"base_url"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	LogSQL bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WikibaseConfig points at the knowledge base Action API.
type WikibaseConfig struct {
	APIURL string `mapstructure:"api_url"`
}

// CommonsConfig points at the media repository Action API.
type CommonsConfig struct {
	APIURL     string `mapstructure:"api_url"`
	ThumbWidth int    `mapstructure:"thumb_width"`
}

// HTTPConfig tunes outgoing API requests.
type HTTPConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	RetryMax  int           `mapstructure:"retry_max"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	CookieName string `mapstructure:"cookie_name"`
}

// AnnotationConfig configures the annotation workflow.
type AnnotationConfig struct {
	Properties []string `mapstructure:"properties"`
	PageSize   int      `mapstructure:"page_size"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	// Env values arrive as a single comma separated string.
	if len(config.Annotation.Properties) == 1 && strings.Contains(config.Annotation.Properties[0], ",") {
		config.Annotation.Properties = splitList(config.Annotation.Properties[0])
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.read_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "file:depictor.sqlite?_foreign_keys=on")
	viper.SetDefault("database.log_sql", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// Remote APIs
	viper.SetDefault("wikibase.api_url", "https://www.wikidata.org/w/api.php")
	viper.SetDefault("commons.api_url", "https://commons.wikimedia.org/w/api.php")
	viper.SetDefault("commons.thumb_width", 8000)
	viper.SetDefault("http.user_agent", "depictor/0.1 (https://github.com/eslsoft/depictor)")
	viper.SetDefault("http.retry_max", 3)
	viper.SetDefault("http.timeout", 20*time.Second)

	// Auth
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.cookie_name", "depictor_session")

	// Annotation
	viper.SetDefault("annotation.properties", []string{"P180"})
	viper.SetDefault("annotation.page_size", 10)
}

// DatabaseDriver returns the database/sql driver name.
func (c *Config) DatabaseDriver() (string, error) {
	switch driver := strings.ToLower(strings.TrimSpace(c.Database.Driver)); driver {
	case "", "sqlite", "sqlite3":
		return "sqlite3", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
}

// DatabaseURL returns the data source name for the configured driver.
func (c *Config) DatabaseURL() (string, error) {
	dsn := strings.TrimSpace(c.Database.DSN)
	if dsn == "" {
		return "", fmt.Errorf("database.dsn 不能为空")
	}
	return dsn, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
