package driverinstall

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
)

const (
	manifestFileName = "manifest.json"

	// VerificationModeHashOnly only checks the payload digest.
	VerificationModeHashOnly = "hash-only"
	// VerificationModeStrict additionally verifies the signer and, when
	// requested, notarization before the installer may run.
	VerificationModeStrict = "strict"

	defaultInstallTimeout = 180 * time.Second
)

// Manifest describes one provider's installer payload. It is loaded fresh
// on every validation or install attempt so a bundle replaced on disk is
// never judged by stale facts.
type Manifest struct {
	Provider         Provider `json:"provider"`
	Version          string   `json:"version"`
	InstallerFile    string   `json:"installerFile"`
	SHA256           string   `json:"sha256"`
	VerificationMode string   `json:"verificationMode"`
	TimeoutMs        int64    `json:"timeoutMs"`

	// PackageID is probed against the macOS package registry to detect a
	// pre-existing install before raising the authorization prompt.
	PackageID string `json:"packageId"`

	// Strict-mode expectations. ExpectedPublisher is a pointer because its
	// mere presence switches a manifest without a verificationMode to
	// strict; manifests written before the mode field existed rely on that.
	ExpectedPublisher      *string `json:"expectedPublisher"`
	ExpectedSignerContains string  `json:"expectedSignerContains"`
	ExpectedTeamID         string  `json:"expectedTeamId"`
	RequireNotarization    bool    `json:"requireNotarization"`
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest format: %w", err)
	}

	if m.InstallerFile == "" {
		return nil, fmt.Errorf("manifest does not name an installer file")
	}

	// Version is informational only; a malformed one is worth a warning
	// but must not block the install.
	if m.Version != "" {
		if _, err := goversion.NewVersion(m.Version); err != nil {
			log.Warnf("manifest version %q is not a valid version: %v", m.Version, err)
		}
	}

	return &m, nil
}

// Strict reports whether signer verification gates the install.
func (m *Manifest) Strict() bool {
	if m.VerificationMode == VerificationModeStrict {
		return true
	}
	return m.VerificationMode == "" && m.ExpectedPublisher != nil
}

// Timeout bounds each external process invocation of this install attempt.
func (m *Manifest) Timeout() time.Duration {
	if m.TimeoutMs <= 0 {
		return defaultInstallTimeout
	}
	return time.Duration(m.TimeoutMs) * time.Millisecond
}
