package driverinstall

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretWindowsOutcome(t *testing.T) {
	testMatrix := []struct {
		name            string
		stdout          string
		runErr          error
		state           State
		code            *int
		message         string
		requiresRestart bool
	}{
		{
			name:   "exit code zero",
			stdout: "0\r\n",
			state:  StateInstalled,
			code:   intPtr(0),
		},
		{
			name:            "reboot required",
			stdout:          "3010",
			state:           StateRebootRequired,
			code:            intPtr(3010),
			requiresRestart: true,
		},
		{
			name:   "already installed",
			stdout: "1638",
			state:  StateAlreadyInstalled,
			code:   intPtr(1638),
		},
		{
			name:    "other exit code",
			stdout:  "55",
			state:   StateFailed,
			code:    intPtr(55),
			message: "Installer exited with code 55",
		},
		{
			name:    "non numeric output",
			stdout:  "access denied",
			state:   StateFailed,
			message: "Unexpected installer output",
		},
		{
			name:    "uac prompt dismissed",
			runErr:  errors.New("The operation was canceled by the user."),
			state:   StateUserCancelled,
			code:    intPtr(1223),
			message: "Installation was cancelled by the user",
		},
		{
			name:    "spawn failure",
			runErr:  errors.New("exec: \"powershell.exe\": executable file not found"),
			state:   StateFailed,
			message: "exec: \"powershell.exe\": executable file not found",
		},
	}

	for _, c := range testMatrix {
		res := interpretWindowsOutcome(ProviderVBCable, c.stdout, c.runErr)
		assert.Equal(t, ProviderVBCable, res.Provider, c.name)
		assert.Equal(t, c.state, res.State, c.name)
		assert.Equal(t, c.requiresRestart, res.RequiresRestart, c.name)
		if c.message != "" {
			assert.Equal(t, c.message, res.Message, c.name)
		}
		if c.code == nil {
			assert.Nil(t, res.Code, c.name)
		} else {
			require.NotNil(t, res.Code, c.name)
			assert.Equal(t, *c.code, *res.Code, c.name)
		}
	}
}

func TestInterpretDarwinOutcome(t *testing.T) {
	testMatrix := []struct {
		name    string
		stdout  string
		runErr  error
		state   State
		code    *int
		message string
	}{
		{
			name:   "exit status zero",
			stdout: "0\n",
			state:  StateInstalled,
			code:   intPtr(0),
		},
		{
			name:    "embedded error number",
			runErr:  errors.New("execution error: installer failed (error number 1)"),
			state:   StateFailed,
			code:    intPtr(1),
			message: "Installer exited with code 1",
		},
		{
			name:    "negative error number",
			runErr:  errors.New("execution error: something broke (error number -60005)"),
			state:   StateFailed,
			code:    intPtr(-60005),
			message: "Installer exited with code -60005",
		},
		{
			name:   "authorization prompt dismissed",
			runErr: errors.New("User canceled authorization prompt"),
			state:  StateUserCancelled,
			code:   intPtr(1223),
		},
		{
			name:   "osascript cancel text",
			runErr: errors.New("execution error: User canceled. (-128)"),
			state:  StateUserCancelled,
			code:   intPtr(1223),
		},
		{
			name:    "non numeric output",
			stdout:  "installer: Package name is BlackHole",
			state:   StateFailed,
			message: "Unexpected installer output",
		},
		{
			name:    "numeric nonzero output",
			stdout:  "70\n",
			state:   StateFailed,
			code:    intPtr(70),
			message: "Installer exited with code 70",
		},
		{
			name:    "other run error",
			runErr:  errors.New("osascript timed out: context deadline exceeded"),
			state:   StateFailed,
			message: "osascript timed out: context deadline exceeded",
		},
	}

	for _, c := range testMatrix {
		res := interpretDarwinOutcome(ProviderBlackHole, c.stdout, c.runErr)
		assert.Equal(t, ProviderBlackHole, res.Provider, c.name)
		assert.Equal(t, c.state, res.State, c.name)
		if c.message != "" {
			assert.Equal(t, c.message, res.Message, c.name)
		}
		if c.code == nil {
			assert.Nil(t, res.Code, c.name)
		} else {
			require.NotNil(t, res.Code, c.name)
			assert.Equal(t, *c.code, *res.Code, c.name)
		}
	}
}

func TestCancelTextMatching(t *testing.T) {
	assert.True(t, isWindowsCancelText("The operation was canceled by the user."))
	assert.True(t, isWindowsCancelText("The operation was CANCELLED by the user"))
	assert.False(t, isWindowsCancelText("access is denied"))

	assert.True(t, isDarwinCancelText("User canceled authorization prompt"))
	assert.True(t, isDarwinCancelText("execution error: User canceled. (-128)"))
	assert.False(t, isDarwinCancelText("installer: cannot open package"))
}
