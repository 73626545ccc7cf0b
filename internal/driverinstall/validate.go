package driverinstall

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// The hash failure wording differs between the standalone pre-flight check
// and the install flow; callers tell the two apart only by it.
const (
	hashMismatchWording     = "hash mismatch."
	hashVerifyFailedWording = "hash verification failed"
)

const unsupportedPlatformMessage = "Virtual audio driver installation is not supported on this platform."

// ValidationReport is the outcome of a bundle pre-flight check.
type ValidationReport struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// bundle is a resolved, cross-checked install payload.
type bundle struct {
	dir           string
	manifest      *Manifest
	installerPath string
}

// resolveBundle loads a provider's manifest and cross-checks it against
// the request, without hashing the payload yet.
func (c *Coordinator) resolveBundle(provider Provider) (*bundle, error) {
	dir, ok := c.locator.Dir(provider)
	if !ok {
		return nil, fmt.Errorf("%s manifest missing.", provider)
	}

	m, err := loadManifest(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, fmt.Errorf("%s manifest invalid: %v", provider, err)
	}

	// A manifest claiming to describe another provider is never trusted,
	// hash correctness notwithstanding.
	if m.Provider != provider {
		return nil, fmt.Errorf("%s manifest provider mismatch.", provider)
	}

	installerPath := filepath.Join(dir, m.InstallerFile)
	if info, err := os.Stat(installerPath); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%s installer binary missing.", provider)
	}

	return &bundle{dir: dir, manifest: m, installerPath: installerPath}, nil
}

// verifyBundle resolves a bundle and checks the payload digest against the
// manifest-declared one.
func (c *Coordinator) verifyBundle(provider Provider, hashFailure string) (*bundle, error) {
	b, err := c.resolveBundle(provider)
	if err != nil {
		return nil, err
	}

	digest, err := fileSHA256(b.installerPath)
	if err != nil {
		return nil, fmt.Errorf("%s installer binary unreadable: %v", provider, err)
	}

	if digest != strings.ToLower(strings.TrimSpace(b.manifest.SHA256)) {
		log.Warnf("digest %s does not match manifest for %s", digest, provider)
		return nil, fmt.Errorf("%s installer bundle %s", provider, hashFailure)
	}

	return b, nil
}

// ValidateBundle pre-flight checks a provider's bundle integrity without
// attempting an install. An empty provider selects the platform's
// preferred one. The outcome is also recorded in the runtime snapshot.
func (c *Coordinator) ValidateBundle(provider Provider) ValidationReport {
	if provider == "" {
		provider = PreferredProvider(c.platform)
		if provider == "" {
			return c.recordBundle(ValidationReport{Message: unsupportedPlatformMessage})
		}
	}

	var report ValidationReport
	if _, err := c.verifyBundle(provider, hashMismatchWording); err != nil {
		report.Message = err.Error()
	} else {
		report.OK = true
		report.Message = fmt.Sprintf("%s installer bundle verified.", provider)
	}

	return c.recordBundle(report)
}

// recordBundle writes a pre-flight outcome into the runtime snapshot.
// Bundle readiness is the only snapshot field fed from outside the install
// flow, and it still goes through the coordinator's lock.
func (c *Coordinator) recordBundle(report ValidationReport) ValidationReport {
	c.mu.Lock()
	c.state.BundleReady = report.OK
	c.state.BundleMessage = report.Message
	c.mu.Unlock()
	return report
}

// ValidateAll checks every known provider bundle. Hash validation is pure
// file work, so bundles shipped for other platforms are checked too.
func (c *Coordinator) ValidateAll() error {
	var merr *multierror.Error
	for _, p := range Providers() {
		if _, err := c.verifyBundle(p, hashMismatchWording); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("failed to close %s: %v", path, err)
		}
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
