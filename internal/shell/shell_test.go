package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Classification(t *testing.T) {
	testCases := []struct {
		invocation string
		program    string
		kind       Kind
	}{
		{"bash --noprofile --norc -CeEuo pipefail {0}", "bash", Posix},
		{"/bin/sh -c", "sh", Posix},
		{"sh", "sh", Posix},
		{"/usr/bin/env -S bash -e", "bash", Posix},
		{"pwsh", "pwsh", NonPosix},
		{"powershell.exe -Command", "powershell", NonPosix},
		{`C:\Windows\System32\cmd.exe /S /C`, "cmd", NonPosix},
		{"python {0}", "python", NonPosix},
		{"/bin/zsh", "zsh", NonPosix},
		{"", "", NonPosix},
	}

	for _, tc := range testCases {
		t.Run(tc.invocation, func(t *testing.T) {
			spec := New(tc.invocation)
			assert.Equal(t, tc.program, spec.Program())
			assert.Equal(t, tc.kind, spec.Kind)
		})
	}
}

func TestSpec_Shebang(t *testing.T) {
	testCases := []struct {
		invocation string
		expected   string
	}{
		{"bash --noprofile --norc -CeEuo pipefail {0}", "#!/usr/bin/env bash --noprofile --norc -CeEuo pipefail"},
		{"/bin/sh -c", "#!/bin/sh"},
		{"/bin/bash -o pipefail -c", "#!/bin/bash -o pipefail"},
		{"sh", "#!/usr/bin/env sh"},
		{"{0}", "#!/bin/sh"},
	}

	for _, tc := range testCases {
		t.Run(tc.invocation, func(t *testing.T) {
			assert.Equal(t, tc.expected, New(tc.invocation).Shebang())
		})
	}
}

func TestChangedShell(t *testing.T) {
	testCases := []struct {
		name     string
		prepare  string
		expected string
		found    bool
	}{
		{name: "none", prepare: "apt-get install -y zsh", found: false},
		{name: "chsh short flag", prepare: "sudo chsh -s /bin/zsh \"$USER\"", expected: "/bin/zsh", found: true},
		{name: "chsh long flag", prepare: "chsh --shell=/usr/bin/fish", expected: "/usr/bin/fish", found: true},
		{name: "usermod", prepare: "usermod -a -G dev -s '/bin/bash' runner", expected: "/bin/bash", found: true},
		{name: "login exec", prepare: "echo setup\nexec /usr/bin/zsh -l", expected: "/usr/bin/zsh", found: true},
		{name: "plain exec is not a switch", prepare: "exec ./configure", found: false},
		{name: "last wins", prepare: "chsh -s /bin/zsh\nchsh -s /bin/dash", expected: "/bin/dash", found: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ChangedShell(tc.prepare)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestIsWindowsRunner(t *testing.T) {
	assert.True(t, IsWindowsRunner("windows-latest"))
	assert.True(t, IsWindowsRunner("Windows-2022"))
	assert.False(t, IsWindowsRunner("ubuntu-latest"))
	assert.False(t, IsWindowsRunner(""))
}
