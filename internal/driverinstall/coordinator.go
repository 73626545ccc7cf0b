package driverinstall

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Coordinator is the subsystem's public entry point. It collapses
// concurrent install requests into one underlying elevated execution and
// owns the runtime snapshot; no other component writes shared state.
type Coordinator struct {
	platform string
	locator  *BundleLocator
	runner   Runner

	group singleflight.Group

	mu    sync.Mutex
	state RuntimeState
}

// New returns a coordinator for the current platform, resolving bundles
// next to the running binary.
func New() *Coordinator {
	return NewWithPlatform(runtime.GOOS, DefaultLocator(), execRunner{})
}

// NewWithPlatform wires an explicit platform, locator and runner. Tests
// and callers that resolve the platform themselves use it.
func NewWithPlatform(platform string, locator *BundleLocator, runner Runner) *Coordinator {
	p := normalizePlatform(platform)
	return &Coordinator{
		platform: p,
		locator:  locator,
		runner:   runner,
		state:    RuntimeState{PlatformSupported: PreferredProvider(p) != ""},
	}
}

// State returns a snapshot of the installer's progress.
func (c *Coordinator) State() RuntimeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Install runs one install attempt for the provider. An empty provider
// selects the platform's preferred one. Concurrent calls for the same
// provider share a single elevated execution; every caller receives the
// shared outcome stamped with its own correlation id. Install never
// returns an error: failures come back as results.
func (c *Coordinator) Install(ctx context.Context, provider Provider, correlationID string) InstallResult {
	if provider == "" {
		provider = PreferredProvider(c.platform)
	}

	strat, ok := strategyFor(c.platform, provider, c.runner)
	if !ok {
		log.Debugf("no installer for provider %q on %s", provider, c.platform)
		return InstallResult{
			Provider:      provider,
			State:         StateUnsupported,
			Message:       unsupportedPlatformMessage,
			CorrelationID: correlationID,
		}
	}

	v, _, shared := c.group.Do(string(provider), func() (interface{}, error) {
		if !c.begin(provider) {
			return failedResult(provider, "another driver installation is already in progress"), nil
		}
		defer c.end()
		return c.runInstall(ctx, provider, strat), nil
	})
	if shared {
		log.Debugf("install request for %s joined an in-flight attempt", provider)
	}

	res := v.(InstallResult)
	res.CorrelationID = correlationID
	return res
}

func (c *Coordinator) begin(provider Provider) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Same-provider duplicates are already collapsed by the single-flight
	// group; this guards against a second elevated install of a different
	// provider.
	if c.state.InProgress {
		return false
	}
	c.state.InProgress = true
	c.state.ActiveProvider = provider
	return true
}

// end reverts the snapshot to idle. It runs deferred inside the shared
// execution, so the mark is released before any caller observes the
// result, whatever failed in between.
func (c *Coordinator) end() {
	c.mu.Lock()
	c.state.InProgress = false
	c.state.ActiveProvider = ""
	c.mu.Unlock()
}

func (c *Coordinator) runInstall(ctx context.Context, provider Provider, strat strategy) InstallResult {
	b, err := c.verifyBundle(provider, hashVerifyFailedWording)
	if err != nil {
		log.Errorf("bundle verification failed: %v", err)
		return failedResult(provider, err.Error())
	}

	if strat.probeExisting(ctx, b.manifest) {
		log.Infof("%s already installed, skipping elevation", provider)
		return InstallResult{
			Provider: provider,
			State:    StateAlreadyInstalled,
			Message:  fmt.Sprintf("%s is already installed.", provider),
		}
	}

	// Strict verification is a hard gate: any rejection aborts before the
	// elevation wrapper ever runs.
	if b.manifest.Strict() {
		if err := strat.verifySigner(ctx, b.manifest, b.installerPath); err != nil {
			log.Errorf("strict verification rejected %s: %v", b.installerPath, err)
			return failedResult(provider, err.Error())
		}
	}

	stdout, runErr := strat.invokeInstaller(ctx, b.manifest, b.installerPath)
	res := strat.interpretOutcome(stdout, runErr)
	res.Provider = provider
	log.Infof("install attempt for %s finished: %s", provider, res.State)
	return res
}
