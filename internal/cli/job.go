package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type JobOptions struct {
	GlobalOptions

	Output string
	Wait   bool
}

func DefaultJobOptions() *JobOptions {
	return &JobOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdJob() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect jobs of the chat2query service.",
	}
	cmd.AddCommand(newCmdJob("get ID", "Poll a job once and print its status.", false))
	cmd.AddCommand(newCmdJob("wait ID", "Poll a job until it finishes and print it.", true))
	return cmd
}

func newCmdJob(use, short string, wait bool) *cobra.Command {
	o := DefaultJobOptions()
	o.Wait = wait
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
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

func (o *JobOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputFlagUsage())
}

func (o *JobOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if args[0] == "" {
		return fmt.Errorf("job id must not be empty")
	}
	return validateOutput(o.Output)
}

func (o *JobOptions) Run(ctx context.Context, out io.Writer, jobID string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	var job *client.Job
	if o.Wait {
		job, err = c.AwaitJob(ctx, jobID)
	} else {
		job, err = c.GetJob(ctx, jobID)
	}
	if err != nil {
		return fmt.Errorf("reading job %s: %w", jobID, err)
	}

	if printed, err := printStructured(out, o.Output, job); printed {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tENDED\tREASON")
	ended := ""
	if t := job.Ended(); !t.IsZero() {
		ended = t.UTC().Format("2006-01-02T15:04:05Z")
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", job.ID, job.Status, ended, job.Reason)
	w.Flush()
	return nil
}
