package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/cache"
	"github.com/greenhouse/greenhouse-cli/internal/config"
	"github.com/greenhouse/greenhouse-cli/internal/greenhouse"
	"github.com/greenhouse/greenhouse-cli/internal/iocontext"
	"github.com/greenhouse/greenhouse-cli/internal/outfmt"
	"github.com/greenhouse/greenhouse-cli/internal/validation"
)

const envRedisURL = "GREENHOUSE_REDIS_URL"

func userAgent() string {
	return "greenhouse-cli/" + version
}

// loadAccount returns the active credentials with --board applied. A board
// token alone is enough for the public Job Board commands.
func loadAccount() (config.Account, error) {
	account, err := config.LoadAccount(flags.Profile)
	if err != nil {
		if flags.Board == "" || !errors.Is(err, config.ErrNotConfigured) {
			return config.Account{}, err
		}
		account = config.Account{}
	}
	if flags.Board != "" {
		account.BoardToken = flags.Board
	}
	for _, u := range []string{account.URLs.JobBoard, account.URLs.Application, account.URLs.Harvest} {
		if u == "" {
			continue
		}
		if err := validation.ValidateAPIURL(u); err != nil {
			return config.Account{}, err
		}
	}
	return account, nil
}

// getClient builds a Greenhouse client from the active account. boardToken,
// when set, replaces the account's board (e.g. one parsed from a job URL).
func getClient(cmd *cobra.Command, boardToken string) (*greenhouse.Client, error) {
	account, err := loadAccount()
	if err != nil {
		return nil, err
	}
	if boardToken != "" {
		account.BoardToken = boardToken
	}
	ctx := cmd.Context()
	scope := account.URLs.JobBoard + "|" + account.BoardToken
	client := greenhouse.New(greenhouse.Options{
		BoardToken:        account.BoardToken,
		ApplicationAPIKey: account.ApplicationAPIKey,
		HarvestAPIKey:     account.HarvestAPIKey,
		HarvestVersion:    account.HarvestVersion,
		OnBehalfOf:        account.OnBehalfOf,
		URLs: greenhouse.URLs{
			JobBoard:    account.URLs.JobBoard,
			Application: account.URLs.Application,
			Harvest:     account.URLs.Harvest,
		},
		Timeout:   flags.Timeout,
		UserAgent: userAgent(),
		OpenCache: func() cache.Cache { return openCache(ctx, scope) },
	})
	openClients = append(openClients, client)
	return client, nil
}

// openClients are the clients built during one Execute call. Execute closes
// them when the command returns.
var openClients []*greenhouse.Client

func closeClients() {
	for _, c := range openClients {
		if err := c.Close(); err != nil {
			slog.Debug("closing client", "error", err)
		}
	}
	openClients = nil
}

// openCache returns the lookup cache for scope, or nil when caching is off.
// Redis is used when GREENHOUSE_REDIS_URL is set and reachable.
func openCache(ctx context.Context, scope string) cache.Cache {
	if cache.Disabled() {
		return nil
	}
	namespace := cache.Namespace(scope)
	if url := strings.TrimSpace(os.Getenv(envRedisURL)); url != "" {
		rc, err := cache.OpenRedis(ctx, url, namespace, cache.DefaultTTL)
		if err == nil {
			return rc
		}
		slog.Warn("redis cache unavailable, using file cache", "error", err)
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return nil
	}
	return cache.NewFileCache(dir, namespace, cache.DefaultTTL)
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

// isStructured reports whether output is JSON, JSONL or CSV.
func isStructured(cmd *cobra.Command) bool {
	return outfmt.IsStructured(cmd.Context())
}

// printJSON writes v in the structured output mode, applying --query.
func printJSON(cmd *cobra.Command, v any) error {
	if !isStructured(cmd) {
		ioStreams := iocontext.GetIO(cmd.Context())
		return outfmt.WriteJSONFiltered(ioStreams.Out, v, outfmt.GetQuery(cmd.Context()), outfmt.IsCompact(cmd.Context()))
	}
	return newFormatter(cmd).Output(v)
}

// printIfNotQuiet prints to stdout unless --quiet is set
func printIfNotQuiet(cmd *cobra.Command, format string, args ...any) {
	if flags.Quiet {
		return
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprintf(ioStreams.Out, format, args...)
}

type keyValue struct {
	Key   string
	Value string
}

// parseKeyValues splits "key=value" arguments on the first "=".
func parseKeyValues(flagName string, pairs []string) ([]keyValue, error) {
	out := make([]keyValue, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s value %q: expected key=value", flagName, pair)
		}
		out = append(out, keyValue{Key: key, Value: value})
	}
	return out, nil
}

// errAlreadyHandled signals that the error was already printed to stderr.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with error reporting: JSON on stderr in
// structured modes, a message with suggestions otherwise.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		ioStreams := iocontext.GetIO(cmd.Context())
		if isStructured(cmd) {
			_ = outfmt.WriteJSON(ioStreams.ErrOut, map[string]any{"error": structuredError(err)})
		} else {
			_, _ = fmt.Fprint(ioStreams.ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}
