package config

import (
	"os"
	"strings"
)

// Environment variables read by LoadAccount. They override profile values.
const (
	EnvProfile           = "GREENHOUSE_PROFILE"
	EnvBoardToken        = "GREENHOUSE_BOARD_TOKEN"
	EnvApplicationAPIKey = "GREENHOUSE_APPLICATION_API_KEY"
	EnvHarvestAPIKey     = "GREENHOUSE_HARVEST_API_KEY"
	EnvHarvestVersion    = "GREENHOUSE_HARVEST_VERSION"
	EnvOnBehalfOf        = "GREENHOUSE_ON_BEHALF_OF"
	EnvJobBoardURL       = "GREENHOUSE_BOARD_URL"
	EnvApplicationURL    = "GREENHOUSE_APPLICATION_URL"
	EnvHarvestURL        = "GREENHOUSE_HARVEST_URL"
)

// LoadAccount returns the account to use. When profile is empty and a
// credential variable is set, the environment alone is used and the keyring
// is never opened. Otherwise the named profile (or GREENHOUSE_PROFILE, or the
// current profile) is loaded and environment values override its fields.
func LoadAccount(profile string) (Account, error) {
	if profile == "" {
		profile = strings.TrimSpace(os.Getenv(EnvProfile))
	}
	if profile == "" {
		if env := applyEnv(Account{}); !env.Empty() {
			return env, nil
		}
		current, err := CurrentProfile()
		if err != nil {
			return Account{}, err
		}
		profile = current
	}

	account, err := LoadProfile(profile)
	if err != nil {
		return Account{}, err
	}
	account = applyEnv(account)
	if account.Empty() {
		return Account{}, ErrNotConfigured
	}
	return account, nil
}

// HasAccount reports whether any credential is available.
func HasAccount() bool {
	_, err := LoadAccount("")
	return err == nil
}

func applyEnv(a Account) Account {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&a.BoardToken, EnvBoardToken)
	set(&a.ApplicationAPIKey, EnvApplicationAPIKey)
	set(&a.HarvestAPIKey, EnvHarvestAPIKey)
	set(&a.HarvestVersion, EnvHarvestVersion)
	set(&a.OnBehalfOf, EnvOnBehalfOf)
	set(&a.URLs.JobBoard, EnvJobBoardURL)
	set(&a.URLs.Application, EnvApplicationURL)
	set(&a.URLs.Harvest, EnvHarvestURL)
	return a
}
