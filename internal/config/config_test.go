package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
registry:
  url: https://doors.example.com/api/keys
  token: s3cret
  refresh_secs: 30
  timeout_secs: 5
persistence:
  path: /var/lib/keyward/keys.bin
bus:
  subsystem: w1
logging:
  level: debug
status:
  addr: 0.0.0.0:8089
  advertise: true
  instance: front-door
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Registry.URL != "https://doors.example.com/api/keys" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Registry.Token != "s3cret" {
		t.Errorf("Registry.Token = %q", cfg.Registry.Token)
	}
	if cfg.Registry.RefreshSecs != 30 {
		t.Errorf("Registry.RefreshSecs = %d, want 30", cfg.Registry.RefreshSecs)
	}
	if cfg.Registry.Timeout().Seconds() != 5 {
		t.Errorf("Timeout() = %v, want 5s", cfg.Registry.Timeout())
	}
	if cfg.Persistence.Path != "/var/lib/keyward/keys.bin" {
		t.Errorf("Persistence.Path = %q", cfg.Persistence.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Status == nil {
		t.Fatal("Status section should be present")
	}
	if cfg.Status.Addr != "0.0.0.0:8089" || !cfg.Status.Advertise {
		t.Errorf("Status = %+v", cfg.Status)
	}
	if port, err := cfg.Status.Port(); err != nil || port != 8089 {
		t.Errorf("Port() = %d, %v, want 8089", port, err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
registry:
  url: http://doors.example.com/keys
  token: s3cret
persistence:
  path: keys.bin
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Registry.RefreshSecs != DefaultRefreshSecs {
		t.Errorf("RefreshSecs = %d, want default %d", cfg.Registry.RefreshSecs, DefaultRefreshSecs)
	}
	if cfg.Registry.TimeoutSecs != DefaultTimeoutSecs {
		t.Errorf("TimeoutSecs = %d, want default %d", cfg.Registry.TimeoutSecs, DefaultTimeoutSecs)
	}
	if cfg.Bus.Subsystem != DefaultSubsystem {
		t.Errorf("Subsystem = %q, want %q", cfg.Bus.Subsystem, DefaultSubsystem)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Status != nil {
		t.Error("Status should stay off when the section is absent")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() of a missing file should fail")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "registry: [not: a: mapping\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() of malformed YAML should fail")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error = %v, want a parse error", err)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing registry url",
			content: `
registry:
  token: s3cret
persistence:
  path: keys.bin
`,
			wantErr: "registry.url",
		},
		{
			name: "unsupported url scheme",
			content: `
registry:
  url: ftp://doors.example.com/keys
  token: s3cret
persistence:
  path: keys.bin
`,
			wantErr: "registry.url",
		},
		{
			name: "missing token",
			content: `
registry:
  url: http://doors.example.com/keys
persistence:
  path: keys.bin
`,
			wantErr: "registry.token",
		},
		{
			name: "missing persistence path",
			content: `
registry:
  url: http://doors.example.com/keys
  token: s3cret
`,
			wantErr: "persistence.path",
		},
		{
			name: "negative refresh interval",
			content: `
registry:
  url: http://doors.example.com/keys
  token: s3cret
  refresh_secs: -5
persistence:
  path: keys.bin
`,
			wantErr: "refresh_secs",
		},
		{
			name: "status section without addr",
			content: `
registry:
  url: http://doors.example.com/keys
  token: s3cret
persistence:
  path: keys.bin
status:
  advertise: true
`,
			wantErr: "status.addr",
		},
		{
			name: "status addr without port",
			content: `
registry:
  url: http://doors.example.com/keys
  token: s3cret
persistence:
  path: keys.bin
status:
  addr: 127.0.0.1
`,
			wantErr: "status addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail validation")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
