package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ConfigSetOptions struct {
	GlobalOptions

	Server           string
	ClusterID        string
	Database         string
	DataAPIServer    string
	DataAPIPublicKey string
	DataAPIPrivate   string
}

func DefaultConfigSetOptions() *ConfigSetOptions {
	return &ConfigSetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client config file.",
	}
	cmd.AddCommand(NewCmdConfigSet())
	return cmd
}

func NewCmdConfigSet() *cobra.Command {
	o := DefaultConfigSetOptions()
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write the connection settings to the client config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ConfigSetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Server, "server", o.Server, "Base URL of the chat2query endpoint")
	fs.StringVar(&o.ClusterID, "cluster-id", o.ClusterID, "Cluster the questions run against")
	fs.StringVar(&o.Database, "database", o.Database, "Database the questions run against")
	fs.StringVar(&o.DataAPIServer, "data-api-server", o.DataAPIServer, "Base URL of a Data API application")
	fs.StringVar(&o.DataAPIPublicKey, "data-api-public-key", o.DataAPIPublicKey, "Public key of the Data API application")
	fs.StringVar(&o.DataAPIPrivate, "data-api-private-key", o.DataAPIPrivate, "Private key of the Data API application")
}

func (o *ConfigSetOptions) Run(ctx context.Context, out io.Writer) error {
	service := client.Service{
		Server: o.Server,
		Credentials: client.Credentials{
			PublicKey:  o.PublicKey,
			PrivateKey: o.PrivateKey,
		},
		ClusterID: o.ClusterID,
		Database:  o.Database,
	}

	if err := client.WriteConfig(o.ConfigFilePath, service); err != nil {
		return fmt.Errorf("writing client config: %w", err)
	}

	if o.DataAPIServer != "" {
		config, err := client.ParseConfigFile(o.ConfigFilePath)
		if err != nil {
			return err
		}
		config.DataAPI = &client.DataAPIService{
			Server: o.DataAPIServer,
			Credentials: client.Credentials{
				PublicKey:  o.DataAPIPublicKey,
				PrivateKey: o.DataAPIPrivate,
			},
		}
		if err := config.Validate(); err != nil {
			return err
		}
		if err := config.Persist(o.ConfigFilePath); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "client config written to %s\n", o.ConfigFilePath)
	return nil
}
