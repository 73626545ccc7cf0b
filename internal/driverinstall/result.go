package driverinstall

// State is the terminal outcome class of one install attempt.
type State string

const (
	StateUnsupported      State = "unsupported"
	StateInstalled        State = "installed"
	StateAlreadyInstalled State = "already-installed"
	StateRebootRequired   State = "reboot-required"
	StateUserCancelled    State = "user-cancelled"
	StateFailed           State = "failed"
)

// cancelCode is what Windows reports when the user dismisses the UAC
// prompt (ERROR_CANCELLED). The macOS path reuses it so the UI handles
// cancellation uniformly.
const cancelCode = 1223

// InstallResult is the immutable outcome of one install attempt. The
// subsystem never returns an error across its public boundary; every
// failure is folded into a result with State == StateFailed.
type InstallResult struct {
	Provider Provider `json:"provider"`
	State    State    `json:"state"`

	// Code carries the installer or OS error code when one was observed.
	// A nil Code means the attempt never produced one (for example a
	// spawn failure).
	Code *int `json:"code,omitempty"`

	Message string `json:"message,omitempty"`

	// CorrelationID is caller-supplied and echoed verbatim; it has no
	// effect on behavior.
	CorrelationID string `json:"correlationId"`

	RequiresRestart bool `json:"requiresRestart,omitempty"`
}

// RuntimeState is a read-only snapshot of the installer's progress. It is
// the only mutable shared state in the subsystem and only the Coordinator
// writes it.
type RuntimeState struct {
	InProgress        bool     `json:"inProgress"`
	ActiveProvider    Provider `json:"activeProvider,omitempty"`
	PlatformSupported bool     `json:"platformSupported"`
	BundleReady       bool     `json:"bundleReady"`
	BundleMessage     string   `json:"bundleMessage"`
}

func failedResult(provider Provider, message string) InstallResult {
	return InstallResult{Provider: provider, State: StateFailed, Message: message}
}

func intPtr(n int) *int {
	return &n
}
