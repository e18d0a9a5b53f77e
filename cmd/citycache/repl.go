package main

import (
	"github.com/spf13/cobra"

	"github.com/citylookup/citycache/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Query cities interactively",
	Long: `Start an interactive session. Each query asks for a country code and a
city name, prints the population and then the cache contents in eviction
order, front first.

Type 'exit' at the country code prompt, or send EOF, to quit.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := openClient(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	return repl.New(client, cmd.InOrStdin(), cmd.OutOrStdout(), repl.WithLogger(logger)).Run()
}
