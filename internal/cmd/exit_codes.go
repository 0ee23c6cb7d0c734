package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/application"
	"github.com/greenhouse/greenhouse-cli/internal/config"
	"github.com/greenhouse/greenhouse-cli/internal/greenhouse"
	"github.com/greenhouse/greenhouse-cli/internal/harvest"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
	exitValidation  = 9
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if code := exitCodeFromStatus(api.StatusCode(err)); code != 0 {
		return code
	}
	switch {
	case application.IsMissingFields(err):
		return exitValidation
	case harvest.IsInvalidOperation(err), api.IsUnsupportedValue(err):
		return exitUsage
	case errors.Is(err, config.ErrNotConfigured),
		errors.Is(err, api.ErrMissingAPIKey),
		errors.Is(err, greenhouse.ErrMissingBoardToken),
		errors.Is(err, greenhouse.ErrMissingHarvestAPIKey):
		return exitAuth
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func exitCodeFromStatus(status int) int {
	switch {
	case status == 0:
		return 0
	case status == http.StatusUnauthorized:
		return exitAuth
	case status == http.StatusForbidden:
		return exitForbidden
	case status == http.StatusNotFound:
		return exitNotFound
	case status == http.StatusTooManyRequests:
		return exitRateLimited
	case status == http.StatusUnprocessableEntity, status == http.StatusBadRequest, status == http.StatusConflict:
		return exitUsage
	case status >= 500:
		return exitServer
	}
	return exitGeneric
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "i/o timeout")
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"accepts ",
		"invalid argument",
		"invalid --",
		"must be",
		"is required",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
