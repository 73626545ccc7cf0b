package driverinstall

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// resourcesEnv points at the packaged-resources root when the application
// runs from an installed bundle.
const resourcesEnv = "LOOPCAST_RESOURCES"

// BundleLocator resolves the on-disk directory holding a provider's
// manifest and installer payload. Pure path computation plus existence
// checks; no side effects.
type BundleLocator struct {
	// Roots are tried in order; the first one whose manifest exists wins.
	Roots []string
}

// DefaultLocator tries the packaged-resources root, the application's
// installation root and the process working directory, in that order.
func DefaultLocator() *BundleLocator {
	var roots []string

	if res := os.Getenv(resourcesEnv); res != "" {
		roots = append(roots, res)
	}

	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	} else {
		log.Debugf("cannot determine executable path: %v", err)
	}

	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}

	return &BundleLocator{Roots: roots}
}

// Dir returns the bundle directory for a provider. The second return value
// is false when no candidate root contains a manifest for it.
func (l *BundleLocator) Dir(provider Provider) (string, bool) {
	for _, root := range l.Roots {
		dir := filepath.Join(root, "drivers", string(provider))
		if info, err := os.Stat(filepath.Join(dir, manifestFileName)); err == nil && !info.IsDir() {
			return dir, true
		}
	}
	return "", false
}
