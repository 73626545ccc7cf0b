package driverinstall

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Outcome interpretation works on free-text process output, the most
// fragile contract in the subsystem. Every pattern lives in this file so a
// change in OS tooling output has exactly one place to land.

var darwinErrNumberRe = regexp.MustCompile(`error number (-?\d+)`)

func isWindowsCancelText(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "canceled by the user") || strings.Contains(s, "cancelled by the user")
}

func isDarwinCancelText(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "user canceled") || strings.Contains(s, "user cancelled")
}

func cancelledResult(provider Provider) InstallResult {
	return InstallResult{
		Provider: provider,
		State:    StateUserCancelled,
		Code:     intPtr(cancelCode),
		Message:  "Installation was cancelled by the user",
	}
}

func exitCodeFailure(provider Provider, code int) InstallResult {
	r := failedResult(provider, fmt.Sprintf("Installer exited with code %d", code))
	r.Code = intPtr(code)
	return r
}

// interpretWindowsOutcome maps the elevation wrapper's raw outcome. The
// wrapper prints the installer's exit code on stdout; a dismissed UAC
// prompt surfaces as a run error mentioning the cancellation.
func interpretWindowsOutcome(provider Provider, stdout string, runErr error) InstallResult {
	if runErr != nil {
		if isWindowsCancelText(runErr.Error()) {
			return cancelledResult(provider)
		}
		return failedResult(provider, runErr.Error())
	}

	code, err := strconv.Atoi(strings.TrimSpace(stdout))
	if err != nil {
		return failedResult(provider, "Unexpected installer output")
	}

	switch code {
	case 0:
		return InstallResult{Provider: provider, State: StateInstalled, Code: intPtr(0)}
	case 3010: // ERROR_SUCCESS_REBOOT_REQUIRED
		return InstallResult{Provider: provider, State: StateRebootRequired, Code: intPtr(3010), RequiresRestart: true}
	case 1638: // ERROR_PRODUCT_VERSION, package already present
		return InstallResult{Provider: provider, State: StateAlreadyInstalled, Code: intPtr(1638)}
	default:
		return exitCodeFailure(provider, code)
	}
}

// interpretDarwinOutcome maps the authorization-prompt wrapper's raw
// outcome. A successful run echoes the installer's exit status; osascript
// folds failures into error text carrying an "error number <n>" suffix.
func interpretDarwinOutcome(provider Provider, stdout string, runErr error) InstallResult {
	if runErr != nil {
		text := runErr.Error()
		if isDarwinCancelText(text) {
			return cancelledResult(provider)
		}
		if match := darwinErrNumberRe.FindStringSubmatch(text); match != nil {
			if code, convErr := strconv.Atoi(match[1]); convErr == nil {
				return exitCodeFailure(provider, code)
			}
		}
		return failedResult(provider, text)
	}

	trimmed := strings.TrimSpace(stdout)
	if trimmed == "0" {
		return InstallResult{Provider: provider, State: StateInstalled, Code: intPtr(0)}
	}
	if code, err := strconv.Atoi(trimmed); err == nil {
		return exitCodeFailure(provider, code)
	}
	return failedResult(provider, "Unexpected installer output")
}
