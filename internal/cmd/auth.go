package cmd

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/config"
	"github.com/greenhouse/greenhouse-cli/internal/harvest"
	"github.com/greenhouse/greenhouse-cli/internal/iocontext"
	"github.com/greenhouse/greenhouse-cli/internal/validation"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage credential profiles",
		Long:    "Store Greenhouse credentials in named profiles in your OS keychain.",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthUseCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		account config.Account
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to a profile",
		Long: strings.TrimSpace(`
Save Greenhouse credentials to a profile in your OS keychain and make it current.

Each API uses its own credential and any of them may be omitted:
- Board token: the name in boards.greenhouse.io/<token>
- Application API key: Job Board API key used to submit applications
- Harvest API key: Harvest key; writes also need an On-Behalf-Of user ID

Pass "-" as a key value to read it from stdin.`),
		Example: strings.TrimSpace(`
  # Public board access only
  greenhouse auth login --board-token vaulttec

  # Harvest key from stdin, saved to the "prod" profile
  pass show greenhouse/harvest | greenhouse auth login --profile prod --harvest-key - --on-behalf-of 4080

  # Load GREENHOUSE_* variables from a .env file
  greenhouse auth login --env-file .env`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			ioStreams := iocontext.GetIO(cmd.Context())

			if envFile != "" {
				values, err := godotenv.Read(envFile)
				if err != nil {
					return fmt.Errorf("failed to read --env-file: %w", err)
				}
				account = mergeEnvFile(account, values)
			}

			for _, secret := range []*string{&account.ApplicationAPIKey, &account.HarvestAPIKey} {
				if *secret != "-" {
					continue
				}
				data, err := ioStreams.ReadInput("-")
				if err != nil {
					return fmt.Errorf("failed to read key from stdin: %w", err)
				}
				*secret = strings.TrimSpace(string(data))
			}

			if account.Empty() {
				return fmt.Errorf("at least one of --board-token, --application-key or --harvest-key is required")
			}
			for _, u := range []string{account.URLs.JobBoard, account.URLs.Application, account.URLs.Harvest} {
				if u == "" {
					continue
				}
				if err := validation.ValidateAPIURL(u); err != nil {
					return err
				}
			}
			if account.OnBehalfOf != "" {
				if _, err := validation.ParseID(account.OnBehalfOf, "--on-behalf-of"); err != nil {
					return err
				}
			}

			profile := profileName()
			if err := config.SaveProfile(profile, account); err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, map[string]any{"profile": profile, "saved": true})
			}
			printIfNotQuiet(cmd, "Saved profile %q\n", profile)
			return nil
		}),
	}

	cmd.Flags().StringVar(&account.BoardToken, "board-token", "", "Job board token")
	cmd.Flags().StringVar(&account.ApplicationAPIKey, "application-key", "", "Application API key ('-' reads stdin)")
	cmd.Flags().StringVar(&account.HarvestAPIKey, "harvest-key", "", "Harvest API key ('-' reads stdin)")
	cmd.Flags().StringVar(&account.HarvestVersion, "harvest-version", "", "Harvest API version (default "+harvest.DefaultVersion+")")
	cmd.Flags().StringVar(&account.OnBehalfOf, "on-behalf-of", "", "Greenhouse user ID for Harvest writes")
	cmd.Flags().StringVar(&account.URLs.JobBoard, "board-url", "", "Override the Job Board API root")
	cmd.Flags().StringVar(&account.URLs.Application, "application-url", "", "Override the application endpoint")
	cmd.Flags().StringVar(&account.URLs.Harvest, "harvest-url", "", "Override the Harvest API root")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read GREENHOUSE_* values from a .env file")
	return cmd
}

// mergeEnvFile fills unset account fields from .env values.
func mergeEnvFile(a config.Account, values map[string]string) config.Account {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(values[key])
		}
	}
	fill(&a.BoardToken, config.EnvBoardToken)
	fill(&a.ApplicationAPIKey, config.EnvApplicationAPIKey)
	fill(&a.HarvestAPIKey, config.EnvHarvestAPIKey)
	fill(&a.HarvestVersion, config.EnvHarvestVersion)
	fill(&a.OnBehalfOf, config.EnvOnBehalfOf)
	fill(&a.URLs.JobBoard, config.EnvJobBoardURL)
	fill(&a.URLs.Application, config.EnvApplicationURL)
	fill(&a.URLs.Harvest, config.EnvHarvestURL)
	return a
}

// profileName is --profile, or the current profile.
func profileName() string {
	if flags.Profile != "" {
		return flags.Profile
	}
	current, err := config.CurrentProfile()
	if err != nil || current == "" {
		return "default"
	}
	return current
}

// maskSecret keeps the last four characters of a key.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

type authStatus struct {
	Profile           string      `json:"profile"`
	BoardToken        string      `json:"board_token,omitempty"`
	ApplicationAPIKey string      `json:"application_api_key,omitempty"`
	HarvestAPIKey     string      `json:"harvest_api_key,omitempty"`
	HarvestVersion    string      `json:"harvest_version"`
	OnBehalfOf        string      `json:"on_behalf_of,omitempty"`
	URLs              config.URLs `json:"urls"`
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials (keys masked)",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			account, err := loadAccount()
			if err != nil {
				return err
			}
			status := authStatus{
				Profile:           profileName(),
				BoardToken:        account.BoardToken,
				ApplicationAPIKey: maskSecret(account.ApplicationAPIKey),
				HarvestAPIKey:     maskSecret(account.HarvestAPIKey),
				HarvestVersion:    account.HarvestVersion,
				OnBehalfOf:        account.OnBehalfOf,
				URLs:              account.URLs,
			}
			if status.HarvestVersion == "" {
				status.HarvestVersion = harvest.DefaultVersion
			}
			if isStructured(cmd) {
				return printJSON(cmd, status)
			}

			f := newFormatter(cmd)
			f.Row("Profile:", status.Profile)
			f.Row("Board token:", orDash(status.BoardToken))
			f.Row("Application key:", orDash(status.ApplicationAPIKey))
			f.Row("Harvest key:", orDash(status.HarvestAPIKey))
			f.Row("Harvest version:", status.HarvestVersion)
			f.Row("On-Behalf-Of:", orDash(status.OnBehalfOf))
			for _, u := range []struct{ name, value string }{
				{"Job Board URL:", status.URLs.JobBoard},
				{"Application URL:", status.URLs.Application},
				{"Harvest URL:", status.URLs.Harvest},
			} {
				if u.value != "" {
					f.Row(u.name, u.value)
				}
			}
			return f.EndTable()
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete a profile",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := profileName()
			if err := config.DeleteProfile(profile); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Deleted profile %q\n", profile)
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			type row struct {
				Name    string `json:"name" csv:"name"`
				Current bool   `json:"current" csv:"current"`
			}
			rows := make([]row, 0, len(profiles))
			for _, p := range profiles {
				rows = append(rows, row{Name: p, Current: p == current})
			}
			if isStructured(cmd) {
				return printJSON(cmd, rows)
			}
			f := newFormatter(cmd)
			if len(rows) == 0 {
				f.Empty("No profiles saved. Run: greenhouse auth login")
				return nil
			}
			for _, r := range rows {
				marker := " "
				if r.Current {
					marker = "*"
				}
				f.Row(marker, r.Name)
			}
			return f.EndTable()
		}),
	}
}

func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profile := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(profile); err != nil {
				return fmt.Errorf("profile %q: %w", profile, err)
			}
			if err := config.SetCurrentProfile(profile); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Switched to profile %q\n", profile)
			return nil
		}),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
