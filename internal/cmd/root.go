package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/config"
	"github.com/greenhouse/greenhouse-cli/internal/debug"
	"github.com/greenhouse/greenhouse-cli/internal/dryrun"
	"github.com/greenhouse/greenhouse-cli/internal/iocontext"
	"github.com/greenhouse/greenhouse-cli/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output   string
	JSON     bool
	HelpJSON bool
	Query    string
	Compact  bool
	Debug    bool
	DryRun   bool
	Quiet    bool
	Timeout  time.Duration
	Profile  string
	Board    string
}

// flags holds the global command flags. It is package-level state reset at
// the start of every Execute call; tests rely on that reset.
var flags = rootFlags{
	Output:  defaultOutput(),
	Timeout: api.DefaultTimeout,
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("GREENHOUSE_OUTPUT")); value != "" {
		return normalizeOutputFormat(value)
	}
	return "text"
}

func normalizeOutputFormat(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "ndjson" {
		return "jsonl"
	}
	return value
}

// loadDotEnv loads <config dir>/.env when present. Variables already set in
// the environment win.
func loadDotEnv() {
	path := filepath.Join(config.Dir(), ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	loadDotEnv()
	defer closeClients()

	flags = rootFlags{
		Output:  defaultOutput(),
		Timeout: api.DefaultTimeout,
	}

	root := &cobra.Command{
		Use:   "greenhouse",
		Short: "CLI for the Greenhouse Job Board, Application and Harvest APIs",
		Long: strings.TrimSpace(`
Browse a Greenhouse job board, submit candidate applications and call any
Harvest endpoint by operation name.

Credentials live in named profiles in your OS keychain (see "greenhouse auth")
or in GREENHOUSE_* environment variables.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			flags.Output = normalizeOutputFormat(flags.Output)
			if flags.JSON {
				if cmd.Flags().Changed("output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.Query != "" && flags.Output != "json" && flags.Output != "jsonl" {
				if cmd.Flags().Changed("output") {
					return fmt.Errorf("--query requires --output json or jsonl (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.Query != "" {
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}

			if flags.Timeout <= 0 {
				return fmt.Errorf("--timeout must be > 0")
			}

			ioStreams := iocontext.DefaultIO()
			if flags.Quiet {
				ioStreams.ErrOut = io.Discard
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	root.PersistentFlags().StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|csv (env GREENHOUSE_OUTPUT)")
	root.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	root.PersistentFlags().BoolVar(&flags.HelpJSON, "help-json", false, "Output command help as JSON")
	root.PersistentFlags().StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	root.PersistentFlags().BoolVar(&flags.Compact, "compact", false, "Compact JSON output (no indentation)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&flags.DryRun, "dry-run", false, "Preview write requests without sending them")
	root.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	root.PersistentFlags().StringVar(&flags.Profile, "profile", "", "Credential profile to use (env GREENHOUSE_PROFILE)")
	root.PersistentFlags().StringVar(&flags.Board, "board", "", "Job board token, overriding the profile")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newBoardCmd())
	root.AddCommand(newEmbedCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newRequirementsCmd())
	root.AddCommand(newHarvestCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	// Args validation runs before PersistentPreRunE, so --help-json is
	// handled before Execute.
	if target, ok := findHelpJSONTarget(root, args); ok {
		return printHelpJSON(root.OutOrStdout(), target)
	}

	if _, err := root.ExecuteC(); err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), err) //nolint:errcheck
		}
		return err
	}
	return nil
}
