// Package config loads fluentsql CLI settings from defaults, a YAML file,
// FLUENTSQL_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	fluentsql "github.com/biyonik/go-fluent-odbc"
)

// EnvPrefix marks environment variables read by the loader.
// FLUENTSQL_DIALECT__BIND_STYLE maps to dialect.bind_style.
const EnvPrefix = "FLUENTSQL_"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

var configFileNames = []string{"fluentsql.yaml", "fluentsql.yml"}

// flagKeys maps flag names whose config key differs from the snake_case form.
var flagKeys = map[string]string{
	"wrapper":     "dialect.wrapper",
	"pagination":  "dialect.pagination",
	"bind_style":  "dialect.bind_style",
	"overflow":    "dialect.overflow",
	"date_format": "dialect.session_date_format",
}

// Config is the library configuration plus CLI presentation settings.
type Config struct {
	fluentsql.Config `koanf:",squash"`

	Output  string `koanf:"output"`
	Verbose bool   `koanf:"verbose"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

// findConfigFile returns the explicit path, or the first default name present
// in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaults() map[string]any {
	d := fluentsql.DefaultConfig()
	return map[string]any{
		"driver":         d.Driver,
		"dsn":            d.DSN,
		"prefix":         d.Prefix,
		"max_open_conns": d.MaxOpenConns,
		"max_idle_conns": d.MaxIdleConns,
		"conn_max_life":  d.ConnMaxLife,
		"conn_max_idle":  d.ConnMaxIdle,
		"debug":          d.Debug,

		"dialect.wrapper":               d.Dialect.Wrapper,
		"dialect.pagination":            string(d.Dialect.Pagination),
		"dialect.max_identifier_length": d.Dialect.MaxIdentifierLength,
		"dialect.bind_style":            string(d.Dialect.BindStyle),
		"dialect.overflow":              string(d.Dialect.Overflow),
		"dialect.lob_initializer":       d.Dialect.LOBInitializer,
		"dialect.strip_quotes":          d.Dialect.StripQuotes,
		"dialect.max_in_list":           d.Dialect.MaxInList,
		"dialect.date_format":           d.Dialect.DateFormat,
		"dialect.session_date_format":   d.Dialect.SessionDateFormat,

		"output":  OutputText,
		"verbose": false,
	}
}

// envKey turns FLUENTSQL_DIALECT__BIND_STYLE into dialect.bind_style.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Load reads configuration. Precedence, highest first: explicitly set flags,
// environment variables, the config file, defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[key]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the output format and the embedded library configuration.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Output, OutputText, OutputJSON)
	}
	return c.Config.Validate()
}
