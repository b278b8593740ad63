package main

import (
	"os"

	"github.com/dataservice/chat2query/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	command := NewChat2QueryCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewChat2QueryCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat2query [flags] [options]",
		Short: "chat2query asks questions about your data in natural language.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdConfig())
	cmd.AddCommand(cli.NewCmdAsk())
	cmd.AddCommand(cli.NewCmdSummary())
	cmd.AddCommand(cli.NewCmdJob())
	cmd.AddCommand(cli.NewCmdQuery())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
