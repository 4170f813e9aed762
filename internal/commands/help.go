package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todosync help" }
func (c *HelpCmd) NeedsBackend() bool { return false }
func (c *HelpCmd) NeedsAuth() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todosync                                           List all lists with their tasks
  todosync list [common flags] [--filter all|active|completed] [<list-name>]
  todosync add [common flags] [--list <list-name>] <title...>
  todosync create [common flags] [--list <list-name>] <title...>
  todosync done [common flags] [--list <list-name>] <ref>...
  todosync undone [common flags] [--list <list-name>] <ref>...
  todosync update [common flags] [--list <list-name>] [--title <t>] [--description <d>]
                  [--status <s>] [--priority <p>] [--start <date>] [--deadline <date>] <ref>
  todosync show [common flags] [--list <list-name>] <ref>
  todosync rm [common flags] [--list <list-name>] <ref>...
  todosync lists [common flags]
  todosync createlist [common flags] <list-name>
  todosync addlist [common flags] <list-name>
  todosync renamelist [common flags] <list> <new-name...>
  todosync rmlist [common flags] [--force] <list-name>
  todosync login [common flags] [--email <email>] [--password <password>] [--remember]
  todosync logout [common flags]
  todosync status [common flags]
  todosync config [common flags]
  todosync shell [common flags]
  todosync help
  todosync version

Task references:
  <n>              Task n of the first list
  <letter><n>      Task n of the list with that letter (see: todosync lists)

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
