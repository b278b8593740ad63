package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type SummaryOptions struct {
	GlobalOptions

	Output string
}

func DefaultSummaryOptions() *SummaryOptions {
	return &SummaryOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdSummary() *cobra.Command {
	o := DefaultSummaryOptions()
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the configured database.",
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

func (o *SummaryOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputFlagUsage())
}

func (o *SummaryOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *SummaryOptions) Run(ctx context.Context, out io.Writer) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	job, err := c.GetDataSummary(ctx)
	if err != nil {
		return fmt.Errorf("summarizing database: %w", err)
	}
	if err := job.Err(); err != nil {
		return err
	}

	if printed, err := printStructured(out, o.Output, job); printed {
		return err
	}
	printSummaryTable(out, job)
	return nil
}

func printSummaryTable(out io.Writer, job *client.DataSummaryJob) {
	if job.Summary == nil {
		fmt.Fprintf(out, "job %s: %s\n", job.ID, job.Status)
		return
	}

	fmt.Fprintf(out, "%s\n\n", job.Summary.Summary)

	names := make([]string, 0, len(job.Summary.Tables))
	for name := range job.Summary.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "TABLE\tDESCRIPTION")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, job.Summary.Tables[name].Description)
	}
	w.Flush()
}
