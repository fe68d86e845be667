package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for jobtrack.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
}

// ServiceConfig identifies this deployment in logs, events and metrics.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT  JWTConfig  `yaml:"jwt"`
	Seed SeedConfig `yaml:"seed"`
}

// JWTConfig contains bearer token settings.
//
// The secret and lifetime are read once at startup and never change for the
// life of the process. Rotating the secret means restarting every instance.
type JWTConfig struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret"`

	// SecretEncoding is "raw" (default) or "base64".
	SecretEncoding string `yaml:"secret_encoding"`

	// AccessTokenTTL is the token lifetime in minutes.
	AccessTokenTTL int `yaml:"access_token_ttl"`

	// LeewaySeconds is the clock skew tolerated on expiry checks. 0 means strict.
	LeewaySeconds int `yaml:"leeway_seconds"`
}

// SeedConfig controls first-boot account creation.
type SeedConfig struct {
	AdminEnabled  bool   `yaml:"admin_enabled"`
	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
}

// MQTTConfig contains MQTT broker settings for record lifecycle events.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for auth metrics.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Secret encodings accepted by JWTConfig.SecretEncoding.
const (
	SecretEncodingRaw    = "raw"
	SecretEncodingBase64 = "base64"
)

// minJWTSecretLength is the minimum signing key size in bytes (HS256 block size / 2).
const minJWTSecretLength = 32

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: JOBTRACK_SECTION_KEY
// For example: JOBTRACK_DATABASE_PATH, JOBTRACK_JWT_SECRET
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "jobtrack-001",
			Name: "jobtrack",
		},
		Database: DatabaseConfig{
			Path:        "./data/jobtrack.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				SecretEncoding: SecretEncodingRaw,
				AccessTokenTTL: 60,
			},
			Seed: SeedConfig{
				AdminEnabled:  true,
				AdminUsername: "admin",
				AdminEmail:    "admin@localhost",
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "jobtrack-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOBTRACK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("JOBTRACK_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("JOBTRACK_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("JOBTRACK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Secrets belong in the environment, not the config file.
	if v := os.Getenv("JOBTRACK_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("JOBTRACK_JWT_SECRET_ENCODING"); v != "" {
		cfg.Security.JWT.SecretEncoding = v
	}
	if v := os.Getenv("JOBTRACK_JWT_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Security.JWT.AccessTokenTTL = ttl
		}
	}

	if v := os.Getenv("JOBTRACK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("JOBTRACK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("JOBTRACK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("JOBTRACK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	errs = append(errs, c.Security.JWT.validate()...)

	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate returns the JWT section's problems, if any.
func (j JWTConfig) validate() []string {
	var errs []string

	key, err := j.SigningKey()
	switch {
	case err != nil:
		errs = append(errs, err.Error())
	case len(key) == 0:
		errs = append(errs, "security.jwt.secret is required (set JOBTRACK_JWT_SECRET environment variable)")
	case len(key) < minJWTSecretLength:
		errs = append(errs, "security.jwt.secret must be at least 32 bytes for adequate security")
	}

	if j.AccessTokenTTL <= 0 {
		errs = append(errs, "security.jwt.access_token_ttl must be positive")
	}
	if j.LeewaySeconds < 0 {
		errs = append(errs, "security.jwt.leeway_seconds must not be negative")
	}

	return errs
}

// SigningKey decodes the configured secret into raw key bytes.
func (j JWTConfig) SigningKey() ([]byte, error) {
	switch strings.ToLower(j.SecretEncoding) {
	case "", SecretEncodingRaw:
		return []byte(j.Secret), nil
	case SecretEncodingBase64:
		key, err := base64.StdEncoding.DecodeString(j.Secret)
		if err != nil {
			return nil, fmt.Errorf("security.jwt.secret is not valid base64: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("security.jwt.secret_encoding %q is not supported", j.SecretEncoding)
	}
}

// TokenLifetime returns the access token TTL as a Duration.
func (j JWTConfig) TokenLifetime() time.Duration {
	return time.Duration(j.AccessTokenTTL) * time.Minute
}

// Leeway returns the expiry clock skew tolerance as a Duration.
func (j JWTConfig) Leeway() time.Duration {
	return time.Duration(j.LeewaySeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
