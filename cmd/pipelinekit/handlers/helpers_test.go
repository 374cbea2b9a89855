package handlers

import (
	"bytes"
	"testing"
)

// captureStdout redirects handler output into a buffer for one test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := stdout
	buf := &bytes.Buffer{}
	stdout = buf
	t.Cleanup(func() { stdout = orig })
	return buf
}

// setEnv replaces the environment lookup with a fixed map.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := getenv
	getenv = func(key string) string { return env[key] }
	t.Cleanup(func() { getenv = orig })
}

func setTerminal(t *testing.T, terminal bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return terminal }
	t.Cleanup(func() { isTerminal = orig })
}
