package driverinstall

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner records every invocation and scripts outcomes per command.
type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	handler func(name string, args []string) (Output, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if f.handler == nil {
		return Output{}, nil
	}
	return f.handler(name, args)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) commandNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		names = append(names, call[0])
	}
	return names
}

// writeBundle lays out drivers/<provider>/ under root with the payload and
// a matching manifest. mutate may adjust the manifest before writing.
func writeBundle(t *testing.T, root string, provider Provider, payload []byte, mutate func(map[string]any)) string {
	t.Helper()

	dir := filepath.Join(root, "drivers", string(provider))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	sum := sha256.Sum256(payload)
	m := map[string]any{
		"provider":      string(provider),
		"version":       "1.0.0",
		"installerFile": "setup.bin",
		"sha256":        hex.EncodeToString(sum[:]),
	}
	if mutate != nil {
		mutate(m)
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.bin"), payload, 0o644))

	return dir
}

func newTestCoordinator(platform, root string, runner Runner) *Coordinator {
	return NewWithPlatform(platform, &BundleLocator{Roots: []string{root}}, runner)
}
