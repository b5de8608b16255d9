package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"conveyor/internal/config"
	"conveyor/internal/daemon"
	"conveyor/internal/ipc"
	"conveyor/internal/logging"
	"conveyor/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	host       *daemon.Host
	server     *ipc.Server
	socketPath string
	configPath string
	baseDir    string
	cancel     context.CancelFunc
}

// setupCLITestEnv boots a daemon host plus IPC server against a temp HOME so
// commands resolve the test config through the normal lookup chain.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "conveyor", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	logger := logging.NewNop()
	host, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := host.StartAll(ctx); err != nil {
		cancel()
		t.Fatalf("StartAll: %v", err)
	}

	socketPath := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socketPath, host, cancel, logger)
	if err != nil {
		cancel()
		host.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("unix sockets unavailable in sandbox: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	time.Sleep(50 * time.Millisecond)

	env := &cliTestEnv{
		cfg:        cfg,
		host:       host,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		baseDir:    base,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		host.Close()
	})

	return env
}

// setupOfflineEnv writes a config file under a temp HOME without starting a
// daemon, for exercising the offline command paths.
func setupOfflineEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "conveyor", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		socketPath: cfg.SocketPath(),
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
