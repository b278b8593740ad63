package client

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/yaml"
)

const (
	// ConfigPathEnvKey overrides the default location of the client config file.
	ConfigPathEnvKey = "CHAT2QUERY_CONFIG"
)

// Config holds the information needed to connect to the remote data service.
type Config struct {
	Service Service `json:"service"`
	// DataAPI is optional; it is only needed by the query command.
	DataAPI *DataAPIService `json:"dataApi,omitempty"`
}

// Credentials is the public/private key pair used for basic authentication.
type Credentials struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// Service contains how to reach and authenticate against Chat2Query, and the
// database questions are asked against.
type Service struct {
	// Server is the base URL of the API (the part before /v3/...).
	Server string `json:"server"`
	Credentials
	ClusterID string `json:"clusterId"`
	Database  string `json:"database"`
}

// DataAPIService is the base URL and credentials of a Data API application.
type DataAPIService struct {
	Server string `json:"server"`
	Credentials
}

func (c *Config) Equal(c2 *Config) bool {
	if c == c2 {
		return true
	}
	if c == nil || c2 == nil {
		return false
	}
	if !c.Service.Equal(&c2.Service) {
		return false
	}
	if c.DataAPI == nil || c2.DataAPI == nil {
		return c.DataAPI == c2.DataAPI
	}
	return *c.DataAPI == *c2.DataAPI
}

func (s *Service) Equal(s2 *Service) bool {
	if s == s2 {
		return true
	}
	if s == nil || s2 == nil {
		return false
	}
	return *s == *s2
}

func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}
	c2 := &Config{Service: c.Service}
	if c.DataAPI != nil {
		dataAPI := *c.DataAPI
		c2.DataAPI = &dataAPI
	}
	return c2
}

// Target returns the database questions are run against.
func (s Service) Target() Target {
	return Target{ClusterID: s.ClusterID, Database: s.Database}
}

// WithCredentials returns a copy of the service using other keys.
func (s Service) WithCredentials(creds Credentials) Service {
	s.Credentials = creds
	return s
}

func NewDefault() *Config {
	return &Config{}
}

// NewFromConfig returns a new Chat2Query client from the given config.
func NewFromConfig(config *Config, opts ...ClientOption) (*Chat2Query, error) {
	httpClient, err := NewHTTPClientFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("NewFromConfig: creating HTTP client %w", err)
	}
	opts = append([]ClientOption{WithHTTPClient(httpClient)}, opts...)
	return NewChat2Query(config.Service, opts...), nil
}

// NewDataAPIFromConfig returns a Data API client, failing when the config has no dataApi section.
func NewDataAPIFromConfig(config *Config) (*DataAPI, error) {
	if config.DataAPI == nil {
		return nil, fmt.Errorf("no dataApi section in client config")
	}
	httpClient, err := NewHTTPClientFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("NewDataAPIFromConfig: creating HTTP client %w", err)
	}
	return NewDataAPI(*config.DataAPI, httpClient), nil
}

// NewHTTPClientFromConfig returns a new HTTP Client from the given config.
// No overall timeout is set: a single request is bounded by the caller's context.
func NewHTTPClientFromConfig(config *Config) (*http.Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	return httpClient, nil
}

// DefaultClientConfigPath returns the default path to the client config file.
func DefaultClientConfigPath() string {
	if value := os.Getenv(ConfigPathEnvKey); value != "" {
		return filepath.Clean(value)
	}
	return filepath.Join(homedir.HomeDir(), ".chat2query", "client.yaml")
}

func ParseConfigFile(filename string) (*Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	config := NewDefault()
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// NewFromConfigFile returns a new Chat2Query client using the config read from the given file.
func NewFromConfigFile(filename string, opts ...ClientOption) (*Chat2Query, error) {
	config, err := ParseConfigFile(filename)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config, opts...)
}

// WriteConfig writes a client config file for the given service.
func WriteConfig(filename string, service Service) error {
	config := NewDefault()
	if existing, err := os.ReadFile(filename); err == nil {
		if err := yaml.Unmarshal(existing, config); err != nil {
			return errors.Wrap(err, "decoding existing config")
		}
	}
	config.Service = service
	if err := config.Validate(); err != nil {
		return err
	}
	return config.Persist(filename)
}

func (c *Config) Persist(filename string) error {
	contents, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.WriteFile(filename, contents, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	validationErrors := make([]error, 0)
	validationErrors = append(validationErrors, validateService(c.Service)...)
	if c.DataAPI != nil {
		validationErrors = append(validationErrors, validateServer("dataApi", c.DataAPI.Server)...)
		validationErrors = append(validationErrors, validateCredentials("dataApi", c.DataAPI.Credentials)...)
	}
	if len(validationErrors) > 0 {
		return fmt.Errorf("invalid configuration: %v", utilerrors.NewAggregate(validationErrors).Error())
	}
	return nil
}

func validateService(service Service) []error {
	validationErrors := validateServer("service", service.Server)
	validationErrors = append(validationErrors, validateCredentials("service", service.Credentials)...)
	if service.ClusterID == "" {
		validationErrors = append(validationErrors, fmt.Errorf("service: no cluster id found"))
	}
	if service.Database == "" {
		validationErrors = append(validationErrors, fmt.Errorf("service: no database found"))
	}
	return validationErrors
}

func validateServer(section, server string) []error {
	validationErrors := make([]error, 0)
	// Make sure the server is specified and well-formed
	if len(server) == 0 {
		return append(validationErrors, fmt.Errorf("%s: no server found", section))
	}
	u, err := url.Parse(server)
	if err != nil {
		return append(validationErrors, fmt.Errorf("%s: invalid server format %q: %w", section, server, err))
	}
	if len(u.Hostname()) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("%s: invalid server format %q: no hostname", section, server))
	}
	return validationErrors
}

func validateCredentials(section string, creds Credentials) []error {
	validationErrors := make([]error, 0)
	if creds.PublicKey == "" {
		validationErrors = append(validationErrors, fmt.Errorf("%s: no public key found", section))
	}
	if creds.PrivateKey == "" {
		validationErrors = append(validationErrors, fmt.Errorf("%s: no private key found", section))
	}
	return validationErrors
}
