package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/greenhouse/greenhouse-cli/internal/outfmt"
)

// CommandHelp is machine-readable command documentation.
type CommandHelp struct {
	Name        string           `json:"name"`
	Path        string           `json:"path"`
	Aliases     []string         `json:"aliases,omitempty"`
	Short       string           `json:"short"`
	Long        string           `json:"long,omitempty"`
	Usage       string           `json:"usage"`
	Example     string           `json:"example,omitempty"`
	Flags       []FlagHelp       `json:"flags,omitempty"`
	Subcommands []SubcommandHelp `json:"subcommands,omitempty"`
}

type FlagHelp struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Default   string `json:"default,omitempty"`
	Usage     string `json:"usage"`
}

type SubcommandHelp struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Short   string   `json:"short"`
}

func describeCommand(cmd *cobra.Command) CommandHelp {
	help := CommandHelp{
		Name:    cmd.Name(),
		Path:    cmd.CommandPath(),
		Aliases: cmd.Aliases,
		Short:   cmd.Short,
		Long:    cmd.Long,
		Usage:   cmd.UseLine(),
		Example: cmd.Example,
	}

	seen := make(map[string]bool)
	addFlag := func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == "help-json" || seen[f.Name] {
			return
		}
		seen[f.Name] = true
		help.Flags = append(help.Flags, FlagHelp{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Default:   f.DefValue,
			Usage:     f.Usage,
		})
	}
	cmd.LocalFlags().VisitAll(addFlag)
	cmd.InheritedFlags().VisitAll(addFlag)

	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		help.Subcommands = append(help.Subcommands, SubcommandHelp{
			Name:    sub.Name(),
			Aliases: sub.Aliases,
			Short:   sub.Short,
		})
	}
	return help
}

func printHelpJSON(w io.Writer, cmd *cobra.Command) error {
	return outfmt.WriteJSON(w, describeCommand(cmd))
}

// findHelpJSONTarget reports whether args ask for --help-json and which
// command they name. Unresolvable commands fall back to root.
func findHelpJSONTarget(root *cobra.Command, args []string) (*cobra.Command, bool) {
	var rest []string
	helpJSON := false
	for _, a := range args {
		switch {
		case a == "--help-json":
			helpJSON = true
		case strings.HasPrefix(a, "--help-json="):
			v := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(a, "--help-json=")))
			helpJSON = v == "true" || v == "1" || v == "yes"
		default:
			rest = append(rest, a)
		}
	}
	if !helpJSON {
		return nil, false
	}
	if len(rest) == 0 {
		return root, true
	}
	cmd, _, err := root.Find(rest)
	if err != nil || cmd == nil {
		return root, true
	}
	return cmd, true
}
