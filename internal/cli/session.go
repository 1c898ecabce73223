package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biyonik/go-fluent-odbc/dialect"
	"github.com/biyonik/go-fluent-odbc/internal/cli/config"
)

// NewSessionCommand creates the session command.
func NewSessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the session setup statements",
		Long: `Print the statements run on every new connection to pin the date and
timestamp display formats. Use --date-format to override the configured format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())

			stmts, err := dialect.SessionStatements(cfg.Dialect.SessionDateFormat)
			if err != nil {
				return err
			}

			if cfg.Output == config.OutputJSON {
				return renderJSON(cmd.OutOrStdout(), map[string][]string{"statements": stmts})
			}
			for _, stmt := range stmts {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), stmt)
			}
			return nil
		},
	}
}
