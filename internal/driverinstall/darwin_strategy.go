package driverinstall

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// macStrategy installs blackhole. Elevation goes through osascript's
// "with administrator privileges", which raises the authorization prompt;
// the elevated shell echoes the installer's exit status.
type macStrategy struct {
	runner Runner
}

func (s *macStrategy) probeExisting(ctx context.Context, m *Manifest) bool {
	if m.PackageID == "" {
		return false
	}

	// pkgutil exits non-zero for unknown packages; any failure counts as
	// not installed.
	if _, err := runWithTimeout(ctx, s.runner, m.Timeout(), "pkgutil", "--pkg-info", m.PackageID); err != nil {
		log.Debugf("package %s not registered: %v", m.PackageID, err)
		return false
	}

	log.Infof("package %s already registered", m.PackageID)
	return true
}

func (s *macStrategy) verifySigner(ctx context.Context, m *Manifest, installerPath string) error {
	out, err := runWithTimeout(ctx, s.runner, m.Timeout(), "pkgutil", "--check-signature", installerPath)
	if err != nil {
		return fmt.Errorf("signature check failed: %w", err)
	}

	signer, teamID := parseSignatureInfo(out.Stdout)
	if signer == "" {
		return errors.New("no signature output")
	}

	if m.ExpectedSignerContains != "" && !strings.Contains(signer, m.ExpectedSignerContains) {
		return fmt.Errorf("installer signer does not match %q: %s", m.ExpectedSignerContains, signer)
	}

	if m.ExpectedTeamID != "" {
		if teamID == "" {
			teamID = "unknown"
		}
		if teamID != m.ExpectedTeamID {
			return fmt.Errorf("Team ID mismatch: expected %s, got %s", m.ExpectedTeamID, teamID)
		}
	}

	if m.RequireNotarization {
		if _, err := runWithTimeout(ctx, s.runner, m.Timeout(), "spctl", "--assess", "--type", "install", installerPath); err != nil {
			return fmt.Errorf("notarization check failed: %w", err)
		}
	}

	return nil
}

// parseSignatureInfo reads the signature-check output: the first non-empty
// line names the signer identity, an optional "Team Identifier:" line
// carries the team id.
func parseSignatureInfo(out string) (signer, teamID string) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if signer == "" {
			signer = line
			continue
		}
		if rest, ok := strings.CutPrefix(line, "Team Identifier:"); ok {
			teamID = strings.TrimSpace(rest)
		}
	}
	return signer, teamID
}

func (s *macStrategy) invokeInstaller(ctx context.Context, m *Manifest, installerPath string) (string, error) {
	script := fmt.Sprintf(
		"do shell script \"/usr/sbin/installer -pkg '%s' -target / >/dev/null 2>&1; echo $?\" with administrator privileges",
		installerPath)

	log.Infof("invoking elevated installer: %s", installerPath)
	out, err := runWithTimeout(ctx, s.runner, m.Timeout(), "osascript", "-e", script)
	return out.Stdout, err
}

func (s *macStrategy) interpretOutcome(stdout string, runErr error) InstallResult {
	return interpretDarwinOutcome(ProviderBlackHole, stdout, runErr)
}
