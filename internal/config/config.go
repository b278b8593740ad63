package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database   *dbConfig
	Service    *svcConfig
	Chat2Query *chat2QueryConfig
	DataAPI    *dataAPIConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"chat2query.db"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string   `envconfig:"CHAT2QUERY_API_ADDRESS" default:":3000"`
	MetricsAddress  string   `envconfig:"CHAT2QUERY_METRICS_ADDRESS" default:":8080"`
	LogLevel        string   `envconfig:"CHAT2QUERY_LOG_LEVEL" default:"info"`
	AllowedOrigins  []string `envconfig:"CHAT2QUERY_ALLOWED_ORIGINS" default:"*"`
	MigrationFolder string   `envconfig:"CHAT2QUERY_MIGRATIONS_FOLDER" default:""`
}

// chat2QueryConfig is the default connection of the ask and data-summary
// routes. Callers may override it per request.
type chat2QueryConfig struct {
	BaseUrl         string        `envconfig:"CHAT2QUERY_BASE_URL" default:"https://us-east-1.data.tidbcloud.com/api/v1beta/app/chat2query-abc/endpoint"`
	PublicKey       string        `envconfig:"CHAT2QUERY_PUBLIC_KEY" default:""`
	PrivateKey      string        `envconfig:"CHAT2QUERY_PRIVATE_KEY" default:""`
	ClusterID       string        `envconfig:"CHAT2QUERY_CLUSTER_ID" default:""`
	Database        string        `envconfig:"CHAT2QUERY_DATABASE" default:""`
	PollInterval    time.Duration `envconfig:"CHAT2QUERY_POLL_INTERVAL" default:"5s"`
	PollMaxAttempts int           `envconfig:"CHAT2QUERY_POLL_MAX_ATTEMPTS" default:"0"`
	PollTimeout     time.Duration `envconfig:"CHAT2QUERY_POLL_TIMEOUT" default:"0s"`
}

type dataAPIConfig struct {
	BaseUrl    string `envconfig:"DATA_API_BASE_URL" default:""`
	PublicKey  string `envconfig:"DATA_API_PUBLIC_KEY" default:""`
	PrivateKey string `envconfig:"DATA_API_PRIVATE_KEY" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		cfg, err := NewDefault()
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// NewDefault reads the environment into a fresh Config, bypassing the
// process-wide instance returned by New.
func NewDefault() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	poll := c.Chat2Query
	if poll.PollInterval <= 0 {
		return fmt.Errorf("CHAT2QUERY_POLL_INTERVAL must be positive, got %s", poll.PollInterval)
	}
	if poll.PollMaxAttempts < 0 {
		return fmt.Errorf("CHAT2QUERY_POLL_MAX_ATTEMPTS must not be negative, got %d", poll.PollMaxAttempts)
	}
	if poll.PollTimeout < 0 {
		return fmt.Errorf("CHAT2QUERY_POLL_TIMEOUT must not be negative, got %s", poll.PollTimeout)
	}
	return nil
}
