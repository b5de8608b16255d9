package main

import (
	"testing"
)

func TestStartCommandAlreadyRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Daemon already running (pid")
}

func TestStatusCommandOnline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "Running (pid")
	requireContains(t, out, "[INFO] Disabled")
	requireContains(t, out, "== Paths ==")
	requireContains(t, out, env.socketPath)
	requireContains(t, out, "No outcomes recorded")
}

func TestStatusCommandOffline(t *testing.T) {
	env := setupOfflineEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "[ERROR] Not running")
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "[OK]")
}

func TestStatusCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	requireContains(t, out, `"Online": true`)
	requireContains(t, out, `"running": true`)
}

func TestStopCommandNotRunning(t *testing.T) {
	env := setupOfflineEnv(t)

	out, _, err := runCLI(t, []string{"stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}
