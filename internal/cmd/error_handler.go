package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/application"
	"github.com/greenhouse/greenhouse-cli/internal/config"
	"github.com/greenhouse/greenhouse-cli/internal/greenhouse"
	"github.com/greenhouse/greenhouse-cli/internal/harvest"
)

// HandleError returns a user-facing message with suggestions for err.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var respErr *api.ResponseError
	var missing *application.MissingFieldsError
	var invalidOp *harvest.InvalidOperationError
	var unsupported *api.UnsupportedValueError

	switch {
	case errors.As(err, &missing):
		msg.WriteString("Application is missing required answers:\n")
		for _, label := range missing.Labels {
			fmt.Fprintf(&msg, "  - %s\n", label)
		}
		msg.WriteString("\nSuggestions:\n")
		msg.WriteString("  - Run: greenhouse requirements <job-id> to list the expected fields\n")
		msg.WriteString("  - Pass answers with -f name=value or --file name=path\n")

	case errors.As(err, &invalidOp):
		fmt.Fprintf(&msg, "Error: %s\n\n", invalidOp.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Operations look like getCandidates or getScorecardsForApplication\n")
		msg.WriteString("  - Use --id for the resource the path names\n")
		msg.WriteString("  - Run: greenhouse harvest routes to list special-cased operations\n")

	case errors.As(err, &unsupported):
		fmt.Fprintf(&msg, "Error: %s\n\n", unsupported.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Field values may be scalars, files, lists or lists of lists\n")

	case errors.Is(err, config.ErrNotConfigured),
		errors.Is(err, greenhouse.ErrMissingBoardToken),
		errors.Is(err, greenhouse.ErrMissingHarvestAPIKey),
		errors.Is(err, api.ErrMissingAPIKey):
		fmt.Fprintf(&msg, "Not configured: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: greenhouse auth login\n")
		msg.WriteString("  - Or export GREENHOUSE_BOARD_TOKEN, GREENHOUSE_APPLICATION_API_KEY, GREENHOUSE_HARVEST_API_KEY\n")

	case errors.As(err, &respErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", respErr.StatusCode, respErr.Message)
		msg.WriteString(suggestionsForStatusCode(respErr.StatusCode))
		if respErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", respErr.RequestID)
		}

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the API URL overrides: greenhouse auth status\n")
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the API URL spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")

	switch code {
	case 400, 422:
		s.WriteString("  - Check your request parameters and body\n")
		s.WriteString("  - Use --dry-run to inspect the request\n")
	case 401:
		s.WriteString("  - Your API key may be invalid or revoked\n")
		s.WriteString("  - Run: greenhouse auth login\n")
	case 403:
		s.WriteString("  - The API key lacks permission for this endpoint\n")
		s.WriteString("  - Harvest writes need an On-Behalf-Of user: --on-behalf-of\n")
	case 404:
		s.WriteString("  - The resource doesn't exist\n")
		s.WriteString("  - Check the ID and the board token\n")
	case 429:
		s.WriteString("  - Too many requests\n")
		s.WriteString("  - Wait for the Retry-After period and retry\n")
	case 500, 502, 503, 504:
		s.WriteString("  - Server error - not your fault\n")
		s.WriteString("  - Wait and retry\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}
	return s.String()
}

// structuredError is the JSON error payload written in structured modes.
func structuredError(err error) map[string]any {
	out := map[string]any{"message": err.Error(), "exit_code": ExitCode(err)}
	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		out["status"] = respErr.StatusCode
		if respErr.RequestID != "" {
			out["request_id"] = respErr.RequestID
		}
	}
	var missing *application.MissingFieldsError
	if errors.As(err, &missing) {
		out["missing"] = missing.Labels
	}
	return out
}
