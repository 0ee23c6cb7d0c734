// Package update checks GitHub for a newer greenhouse-cli release.
package update

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/greenhouse/greenhouse-cli/internal/api"
)

const (
	DefaultReleasesURL = "https://api.github.com/repos/greenhouse/greenhouse-cli/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is the latest-release endpoint; tests point it elsewhere.
var ReleasesURL = DefaultReleasesURL

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// CheckForUpdate compares currentVersion with the latest release. It returns
// nil for development builds and whenever the check fails.
func CheckForUpdate(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	client := api.New(ReleasesURL, "")
	client.HTTP.Timeout = CheckTimeout
	resp, err := client.Send(ctx, http.MethodGet, "", api.SendOptions{
		Headers: map[string]string{"Accept": "application/vnd.github+json"},
	})
	if err != nil {
		return nil
	}
	var release Release
	if err := resp.Decode(&release); err != nil || release.TagName == "" {
		return nil
	}

	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(release.TagName)

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
