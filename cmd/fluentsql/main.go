// Command fluentsql compiles statement files with the Oracle/ODBC grammar.
package main

import (
	"os"

	"github.com/biyonik/go-fluent-odbc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
