package driverinstall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// windowsStrategy installs vb-cable. Elevation goes through PowerShell's
// Start-Process -Verb RunAs, which raises the UAC prompt and reports the
// installer's exit code on stdout.
type windowsStrategy struct {
	runner Runner
}

// authenticodeInfo is the record emitted by the signature-inspection
// command: Get-AuthenticodeSignature piped through ConvertTo-Json.
type authenticodeInfo struct {
	Status  string `json:"Status"`
	Subject string `json:"Subject"`
}

func (s *windowsStrategy) probeExisting(_ context.Context, _ *Manifest) bool {
	// No registry probe for vb-cable; exit code 1638 already reports a
	// pre-existing install.
	return false
}

func (s *windowsStrategy) verifySigner(ctx context.Context, m *Manifest, installerPath string) error {
	// Fail closed before touching any tooling: a strict manifest that
	// names no publisher can never pass.
	if m.ExpectedPublisher == nil || *m.ExpectedPublisher == "" {
		return fmt.Errorf("%s manifest does not define an expected signer", m.Provider)
	}
	expected := *m.ExpectedPublisher

	command := fmt.Sprintf(
		"Get-AuthenticodeSignature -LiteralPath '%s' | Select-Object -Property Status,@{n='Subject';e={$_.SignerCertificate.Subject}} | ConvertTo-Json -Compress",
		installerPath)
	out, err := runWithTimeout(ctx, s.runner, m.Timeout(), "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", command)
	if err != nil {
		return fmt.Errorf("signature inspection failed: %w", err)
	}

	info, err := parseAuthenticode(out.Stdout)
	if err != nil {
		return err
	}
	if info.Status != "Valid" {
		return fmt.Errorf("Authenticode status %q is invalid", info.Status)
	}
	if !strings.Contains(info.Subject, expected) {
		return fmt.Errorf("installer publisher mismatch: %q does not contain %q", info.Subject, expected)
	}

	log.Debugf("Authenticode signature accepted for %s", installerPath)
	return nil
}

func parseAuthenticode(stdout string) (authenticodeInfo, error) {
	var info authenticodeInfo

	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return info, errors.New("empty signature inspection output")
	}
	if err := json.Unmarshal([]byte(trimmed), &info); err != nil {
		return info, fmt.Errorf("unreadable signature inspection output: %w", err)
	}

	return info, nil
}

func (s *windowsStrategy) invokeInstaller(ctx context.Context, m *Manifest, installerPath string) (string, error) {
	command := fmt.Sprintf("$p = Start-Process -FilePath '%s' -Verb RunAs -Wait -PassThru; $p.ExitCode", installerPath)

	log.Infof("invoking elevated installer: %s", installerPath)
	out, err := runWithTimeout(ctx, s.runner, m.Timeout(), "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", command)
	return out.Stdout, err
}

func (s *windowsStrategy) interpretOutcome(stdout string, runErr error) InstallResult {
	return interpretWindowsOutcome(ProviderVBCable, stdout, runErr)
}
