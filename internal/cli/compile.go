package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/biyonik/go-fluent-odbc/internal/cli/config"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile YAML statement files to SQL",
		Long: `Compile reads one or more YAML statement files and prints the SQL and
bind parameters each statement compiles to. Nothing is sent to a database.

Example file:

  statements:
    - name: active users
      table: users u
      columns: [u.id, u.name]
      where:
        - {column: u.status, value: active}
      orders: [u.name]
      limit: 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			logger := GetLogger(ctx)

			var results []Compiled
			for _, path := range args {
				file, err := ReadStatementFile(path)
				if err != nil {
					return err
				}
				for i, st := range file.Statements {
					res, err := st.Compile(builderOptions(cfg)...)
					if err != nil {
						return fmt.Errorf("%s: statement %d %s: %w", path, i+1, st.Name, err)
					}
					res.Source = path
					logger.Debug("statement compiled", "source", path, "kind", res.Kind, "params", len(res.Args))
					results = append(results, res)
				}
			}

			if cfg.Output == config.OutputJSON {
				return renderJSON(cmd.OutOrStdout(), results)
			}
			renderCompiled(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func renderCompiled(w io.Writer, results []Compiled) {
	for i, res := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		label := res.Kind
		if res.Name != "" {
			label = res.Name + " (" + res.Kind + ")"
		}
		_, _ = fmt.Fprintf(w, "-- %s [%s]\n%s\n", label, res.Source, res.SQL)

		if len(res.Args) == 0 {
			_, _ = fmt.Fprintln(w, "(no parameters)")
			continue
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Type", "Value"})
		for n, arg := range res.Args {
			t.AppendRow(table.Row{n + 1, fmt.Sprintf("%T", arg), formatValue(arg)})
		}
		t.Render()
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
