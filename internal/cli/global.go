package cli

import (
	"fmt"
	"time"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type GlobalOptions struct {
	ConfigFilePath string
	PollInterval   time.Duration
	MaxAttempts    int
	Timeout        time.Duration
	PublicKey      string
	PrivateKey     string
	LogLevel       string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigFilePath: client.DefaultClientConfigPath(),
		PollInterval:   client.DefaultPollInterval,
		LogLevel:       "error",
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client config file")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "Delay between two polls of a job")
	fs.IntVar(&o.MaxAttempts, "max-attempts", o.MaxAttempts, "Give up after this many polls (0 means never)")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Give up waiting after this duration (0 means never)")
	fs.StringVar(&o.PublicKey, "public-key", o.PublicKey, "Public key overriding the one of the config file")
	fs.StringVar(&o.PrivateKey, "private-key", o.PrivateKey, "Private key overriding the one of the config file")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (debug, info, warn, error)")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	undo := log.Setup(o.LogLevel)
	cobra.OnFinalize(undo)
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if o.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Config reads the client config file and applies the credential flags.
func (o *GlobalOptions) Config() (*client.Config, error) {
	config, err := client.ParseConfigFile(o.ConfigFilePath)
	if err != nil {
		return nil, fmt.Errorf("reading client config: %w", err)
	}
	if o.PublicKey != "" || o.PrivateKey != "" {
		creds := config.Service.Credentials
		if o.PublicKey != "" {
			creds.PublicKey = o.PublicKey
		}
		if o.PrivateKey != "" {
			creds.PrivateKey = o.PrivateKey
		}
		config.Service = config.Service.WithCredentials(creds)
	}
	return config, nil
}

func (o *GlobalOptions) Client() (*client.Chat2Query, error) {
	config, err := o.Config()
	if err != nil {
		return nil, err
	}
	return client.NewFromConfig(config, client.WithDefaultPollOptions(o.PollOptions()...))
}

func (o *GlobalOptions) DataAPI() (*client.DataAPI, error) {
	config, err := o.Config()
	if err != nil {
		return nil, err
	}
	return client.NewDataAPIFromConfig(config)
}

func (o *GlobalOptions) PollOptions() []client.PollOption {
	return []client.PollOption{
		client.WithInterval(o.PollInterval),
		client.WithMaxAttempts(o.MaxAttempts),
		client.WithTimeout(o.Timeout),
	}
}
