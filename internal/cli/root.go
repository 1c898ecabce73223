// Package cli provides the fluentsql command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	fluentsql "github.com/biyonik/go-fluent-odbc"
	"github.com/biyonik/go-fluent-odbc/internal/cli/config"
)

// Version is set at build time.
var Version = "0.1.0"

type configKey struct{}

type loggerKey struct{}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "fluentsql",
		Short: "Oracle/ODBC SQL compiler",
		Long: `fluentsql compiles declarative statement files into Oracle-flavoured SQL
and bind parameters, using the same grammar as the go-fluent-odbc library.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./fluentsql.yaml)")
	pf.String("prefix", "", "Table prefix")
	pf.String("wrapper", "", `Identifier wrapper, e.g. "%s" or '"%s"'`)
	pf.String("pagination", "", "Pagination strategy (rownum|offset_fetch)")
	pf.String("bind-style", "", "Where bind style (named|positional)")
	pf.String("overflow", "", "Bind name overflow policy (reject|numbered|sentinel)")
	pf.String("date-format", "", "Session date format, e.g. YYYY-MM-DD HH24:MI:SS")
	pf.StringP("output", "o", "", "Output format (text|json)")
	pf.BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("pagination", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"rownum", "offset_fetch"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewCompileCommand())
	rootCmd.AddCommand(NewSessionCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the loaded config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{Config: *fluentsql.DefaultConfig(), Output: config.OutputText}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// builderOptions turns the loaded config into library options.
func builderOptions(cfg *config.Config) []fluentsql.Option {
	return []fluentsql.Option{
		fluentsql.WithDialectConfig(cfg.Dialect),
		fluentsql.WithTablePrefix(cfg.Prefix),
	}
}
