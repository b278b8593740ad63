package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type QueryOptions struct {
	GlobalOptions

	Output string
	Params []string
}

func DefaultQueryOptions() *QueryOptions {
	return &QueryOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdQuery() *cobra.Command {
	o := DefaultQueryOptions()
	cmd := &cobra.Command{
		Use:   "query ENDPOINT",
		Short: "Call a SQL endpoint of the configured Data API application.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *QueryOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputFlagUsage())
	fs.StringArrayVarP(&o.Params, "param", "p", o.Params, "Endpoint parameter as key=value, repeatable")
}

func (o *QueryOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if _, err := parseParams(o.Params); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *QueryOptions) Run(ctx context.Context, out io.Writer, endpoint string) error {
	dataAPI, err := o.DataAPI()
	if err != nil {
		return fmt.Errorf("creating data api client: %w", err)
	}

	params, err := parseParams(o.Params)
	if err != nil {
		return err
	}

	resp, err := dataAPI.Query(ctx, endpoint, params)
	if err != nil {
		return fmt.Errorf("querying %s: %w", endpoint, err)
	}

	if printed, err := printStructured(out, o.Output, resp); printed {
		return err
	}
	printRecordTable(out, resp.ColumnNames(), resp.Data.Rows)
	return nil
}

func parseParams(raw []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range raw {
		key, value, found := strings.Cut(p, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", p)
		}
		params.Add(key, value)
	}
	return params, nil
}
