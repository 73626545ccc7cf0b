package driverinstall

import "context"

// strategy is the closed set of platform variants the coordinator picks
// from once per install attempt. probeExisting and verifySigner run before
// any elevation; invokeInstaller spawns the elevation wrapper and returns
// its raw stdout and run error; interpretOutcome is the pure translation
// of that raw outcome into a result.
type strategy interface {
	probeExisting(ctx context.Context, m *Manifest) bool
	verifySigner(ctx context.Context, m *Manifest, installerPath string) error
	invokeInstaller(ctx context.Context, m *Manifest, installerPath string) (string, error)
	interpretOutcome(stdout string, runErr error) InstallResult
}

// strategyFor selects the platform variant for a provider. It reports
// false for any platform/provider combination with no installer, before
// any file-system or process work occurs.
func strategyFor(platform string, provider Provider, r Runner) (strategy, bool) {
	if provider.platform() != normalizePlatform(platform) {
		return nil, false
	}

	switch provider {
	case ProviderVBCable:
		return &windowsStrategy{runner: r}, true
	case ProviderBlackHole:
		return &macStrategy{runner: r}, true
	default:
		return nil, false
	}
}
