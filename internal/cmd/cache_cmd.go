package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Aliases: []string{"ch"},
		Short:   "Manage cached job board lookups",
		Long: strings.TrimSpace(`
Required-question schemas are cached for ten minutes so repeated "apply" and
"requirements" runs skip the Job Board request. Files live in the user cache
directory, or in Redis when GREENHOUSE_REDIS_URL is set.`),
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached data",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return fmt.Errorf("could not determine cache directory: %w", err)
			}
			removed, err := cache.ClearAll(dir)
			if err != nil {
				return err
			}
			result := map[string]any{"dir": dir, "files_removed": removed}

			if url := strings.TrimSpace(os.Getenv(envRedisURL)); url != "" {
				rc, err := cache.OpenRedis(cmd.Context(), url, "", 0)
				if err != nil {
					return err
				}
				defer func() { _ = rc.Close() }()
				keys, err := rc.ClearAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear redis cache: %w", err)
				}
				result["redis_keys_removed"] = keys
			}

			if isStructured(cmd) {
				return printJSON(cmd, result)
			}
			printIfNotQuiet(cmd, "Cache cleared: %s (%d files)\n", dir, removed)
			if keys, ok := result["redis_keys_removed"]; ok {
				printIfNotQuiet(cmd, "Redis cache cleared (%d keys)\n", keys)
			}
			return nil
		}),
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the cache directory and its entries",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return fmt.Errorf("could not determine cache directory: %w", err)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, dir)

			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil // not created until the first cached lookup
			}
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				info, err := e.Info()
				if err != nil {
					continue
				}
				_, _ = fmt.Fprintf(out, "  %s (%d bytes)\n", e.Name(), info.Size())
			}
			return nil
		}),
	}
}
