package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Datadog  DatadogConfig  `mapstructure:"datadog"`
	TTL      TTLConfig      `mapstructure:"ttl"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
	// LedgerSize caps the in-memory recent-batch ledger.
	LedgerSize int `mapstructure:"ledger_size"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id"`
	Topics          []string `mapstructure:"topics"`
}

type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	// SecretName is the KV v2 secret holding the per-org key pairs.
	SecretName string `mapstructure:"secret_name"`
}

type DatadogConfig struct {
	// Site is the Datadog site domain (datadoghq.com, datadoghq.eu, ...).
	Site string `mapstructure:"site"`
	// TimeoutSeconds bounds every API round trip.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type TTLConfig struct {
	RetentionDays int `mapstructure:"retention_days"` // Default: 30
}

// Load reads configuration from environment variables and config files.
// Environment variables override file values. Prefix: ARDA_PROV_
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", "8091")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.ledger_size", 20)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "arda_provisioner")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group_id", "arda-provisioner-group")
	v.SetDefault("kafka.topics", []string{"storage-events", "provision-commands"})
	v.SetDefault("vault.secret_name", "ddOrgSecret")
	v.SetDefault("datadog.site", "datadoghq.com")
	v.SetDefault("datadog.timeout_seconds", 10)
	v.SetDefault("ttl.retention_days", 30)

	// Environment variables (e.g. DATABASE_HOST -> database.host)
	v.SetEnvPrefix("ARDA_PROV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also support simple env vars without prefix for Docker Compose convenience
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("vault.address", "VAULT_ADDR")
	v.BindEnv("vault.token", "VAULT_TOKEN")
	v.BindEnv("vault.secret_name", "SECRET_NAME")
	v.BindEnv("datadog.site", "DATADOG_SITE")
	v.BindEnv("server.port", "PORT")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" dbname=" + d.Name +
		" user=" + d.User +
		" password=" + d.Password +
		" sslmode=disable"
}

// Timeout returns the Datadog client timeout as a duration.
func (d DatadogConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}
