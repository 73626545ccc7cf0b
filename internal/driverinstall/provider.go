package driverinstall

import "strings"

// Provider identifies a virtual audio device family. Exactly one provider
// is shipped per platform; no platform carries both.
type Provider string

const (
	// ProviderVBCable is the Windows virtual audio cable package.
	ProviderVBCable Provider = "vb-cable"
	// ProviderBlackHole is the macOS loopback driver package.
	ProviderBlackHole Provider = "blackhole"
)

// Providers lists every provider the application ships a bundle for.
func Providers() []Provider {
	return []Provider{ProviderVBCable, ProviderBlackHole}
}

// normalizePlatform folds Node-style platform names into GOOS values so
// callers coming from either convention agree on the mapping.
func normalizePlatform(platform string) string {
	switch strings.ToLower(platform) {
	case "win32", "windows":
		return "windows"
	case "darwin", "macos", "osx":
		return "darwin"
	default:
		return strings.ToLower(platform)
	}
}

// PreferredProvider returns the provider shipped for the given platform.
// Platforms without a virtual audio driver get the empty Provider.
func PreferredProvider(platform string) Provider {
	switch normalizePlatform(platform) {
	case "windows":
		return ProviderVBCable
	case "darwin":
		return ProviderBlackHole
	default:
		return ""
	}
}

// platform returns the only platform a provider's installer runs on.
func (p Provider) platform() string {
	switch p {
	case ProviderVBCable:
		return "windows"
	case ProviderBlackHole:
		return "darwin"
	default:
		return ""
	}
}
