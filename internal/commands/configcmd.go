package commands

import (
	"context"
	"flag"
	"io"

	"gopkg.in/yaml.v3"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string       { return "config" }
func (c *ConfigCmd) Aliases() []string  { return nil }
func (c *ConfigCmd) Synopsis() string   { return "Print the effective configuration" }
func (c *ConfigCmd) Usage() string      { return "todosync config [common flags]" }
func (c *ConfigCmd) NeedsBackend() bool { return false }
func (c *ConfigCmd) NeedsAuth() bool    { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {}

// effectiveConfig is the YAML document printed by the config command.
type effectiveConfig struct {
	Dir             string `yaml:"dir"`
	config.Settings `yaml:",inline"`
}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(effectiveConfig{Dir: cfg.Dir, Settings: cfg.Settings.Redacted()}); err != nil {
		return fail(errOut, err)
	}
	if err := enc.Close(); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
