package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dataservice/chat2query/internal/service"
	"github.com/dataservice/chat2query/internal/service/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type AskOptions struct {
	GlobalOptions

	Output string
	Export string
}

func DefaultAskOptions() *AskOptions {
	return &AskOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdAsk() *cobra.Command {
	o := DefaultAskOptions()
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Ask a question in natural language and print the answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *AskOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, outputFlagUsage())
	fs.StringVar(&o.Export, "export", o.Export, "Also write the answer to this file (.csv, .html or .xlsx)")
}

func (o *AskOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if strings.TrimSpace(strings.Join(args, " ")) == "" {
		return fmt.Errorf("the question must not be empty")
	}
	if err := validateOutput(o.Output); err != nil {
		return err
	}
	if o.Export != "" {
		if _, err := report.FormatFromFilename(o.Export); err != nil {
			return err
		}
	}
	return nil
}

func (o *AskOptions) Run(ctx context.Context, out io.Writer, question string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	job, err := c.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("asking %q: %w", question, err)
	}

	answer := service.NormalizeAsk(job)
	if o.Export != "" && !answer.Failed() {
		if err := exportAnswer(&answer, question, o.Export); err != nil {
			return err
		}
	}

	if printed, err := printStructured(out, o.Output, answer); printed {
		return err
	}
	if answer.Failed() {
		return errors.New(answer.Error)
	}

	printAnswerTable(out, &answer)
	if o.Export != "" {
		fmt.Fprintf(out, "\nanswer exported to %s\n", o.Export)
	}
	return nil
}

func exportAnswer(answer *service.Answer, question, filename string) error {
	data, err := answer.Export(question, filename, time.Now())
	if err != nil {
		return fmt.Errorf("exporting answer: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("exporting answer: %w", err)
	}
	return nil
}
