package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("prefix", "", "")
	fs.String("wrapper", "", "")
	fs.String("pagination", "", "")
	fs.String("bind-style", "", "")
	fs.String("overflow", "", "")
	fs.String("date-format", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, "odbc", cfg.Driver)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLife)
	assert.Equal(t, OutputText, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, dialect.PaginationRowNum, cfg.Dialect.Pagination)
	assert.Equal(t, dialect.BindNamed, cfg.Dialect.BindStyle)
	assert.Equal(t, "%s", cfg.Dialect.Wrapper)
	assert.True(t, cfg.Dialect.StripQuotes)
	assert.Equal(t, "YYYY-MM-DD HH24:MI:SS", cfg.Dialect.SessionDateFormat)
}

func TestLoad_FileEnvFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
prefix: file_
conn_max_life: 10m
dialect:
  pagination: offset_fetch
  bind_style: positional
  wrapper: '"%s"'
  session_date_format: DD.MM.YYYY
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fluentsql.yaml"), []byte(content), 0o600))

	t.Setenv("FLUENTSQL_PREFIX", "env_")
	t.Setenv("FLUENTSQL_DIALECT__OVERFLOW", "numbered")

	cfg, err := Load("", newFlags(t, "--pagination", "rownum", "-o", "json"))
	require.NoError(t, err)

	assert.Equal(t, "fluentsql.yaml", cfg.File)
	assert.Equal(t, "env_", cfg.Prefix)
	assert.Equal(t, 10*time.Minute, cfg.ConnMaxLife)
	assert.Equal(t, dialect.PaginationRowNum, cfg.Dialect.Pagination)
	assert.Equal(t, dialect.BindPositional, cfg.Dialect.BindStyle)
	assert.Equal(t, dialect.OverflowNumbered, cfg.Dialect.Overflow)
	assert.Equal(t, `"%s"`, cfg.Dialect.Wrapper)
	assert.Equal(t, "DD.MM.YYYY", cfg.Dialect.SessionDateFormat)
	assert.Equal(t, OutputJSON, cfg.Output)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLUENTSQL_PREFIX", "env_")

	cfg, err := Load("", newFlags(t, "--prefix", "flag_", "--bind-style", "positional", "--date-format", "YYYY-MM-DD", "-v"))
	require.NoError(t, err)

	assert.Equal(t, "flag_", cfg.Prefix)
	assert.Equal(t, dialect.BindPositional, cfg.Dialect.BindStyle)
	assert.Equal(t, "YYYY-MM-DD", cfg.Dialect.SessionDateFormat)
	assert.True(t, cfg.Verbose)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLUENTSQL_DIALECT__PAGINATION", "offset_fetch")

	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, dialect.PaginationOffsetFetch, cfg.Dialect.Pagination)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("driver: oracle\nprefix: hr_\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "oracle", cfg.Driver)
	assert.Equal(t, "hr_", cfg.Prefix)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		file      string
		errSubstr string
	}{
		{
			name:      "missing explicit file",
			file:      "does-not-exist.yaml",
			errSubstr: "error reading config file",
		},
		{
			name:      "bad pagination",
			args:      []string{"--pagination", "keyset"},
			errSubstr: "unknown pagination strategy",
		},
		{
			name:      "bad wrapper",
			args:      []string{"--wrapper", "[x]"},
			errSubstr: "wrapper",
		},
		{
			name:      "quoted session format",
			args:      []string{"--date-format", "YYYY' --"},
			errSubstr: "must not contain quotes",
		},
		{
			name:      "bad output",
			args:      []string{"-o", "xml"},
			errSubstr: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			_, err := Load(tt.file, newFlags(t, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "prefix", envKey("FLUENTSQL_PREFIX"))
	assert.Equal(t, "dialect.bind_style", envKey("FLUENTSQL_DIALECT__BIND_STYLE"))
	assert.Equal(t, "max_open_conns", envKey("FLUENTSQL_MAX_OPEN_CONNS"))
}
