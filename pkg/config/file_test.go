package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charlie0129/batnotify/pkg/power"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func assertDefaults(t *testing.T, f *File) {
	t.Helper()
	if got := f.CapacityPath(); got != power.DefaultCapacityPath {
		t.Errorf("CapacityPath() = %s", got)
	}
	if got := f.ACOnlinePath(); got != power.DefaultACOnlinePath {
		t.Errorf("ACOnlinePath() = %s", got)
	}
	if got := f.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval() = %s", got)
	}
	if got := f.ShutdownDelay(); got != time.Minute {
		t.Errorf("ShutdownDelay() = %s", got)
	}
	if got := f.ShutdownCommand(); !reflect.DeepEqual(got, []string{"poweroff"}) {
		t.Errorf("ShutdownCommand() = %v", got)
	}
	if got := f.Notifier(); got != "dbus" {
		t.Errorf("Notifier() = %s", got)
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	assertDefaults(t, f)
}

func TestEmptyFileUsesDefaults(t *testing.T) {
	f, err := NewFile(writeConfig(t, "\n  \n"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	assertDefaults(t, f)
}

func TestLoadOverrides(t *testing.T) {
	f, err := NewFile(writeConfig(t, `
capacity_path = "/sys/class/power_supply/BAT1/capacity"
poll_interval = "2s"
shutdown_delay = "90s"
shutdown_command = ["systemctl", "poweroff"]
notifier = "notify-send"
`))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if got := f.CapacityPath(); got != "/sys/class/power_supply/BAT1/capacity" {
		t.Errorf("CapacityPath() = %s", got)
	}
	if got := f.ACOnlinePath(); got != power.DefaultACOnlinePath {
		t.Errorf("ACOnlinePath() = %s, want default", got)
	}
	if got := f.PollInterval(); got != 2*time.Second {
		t.Errorf("PollInterval() = %s", got)
	}
	if got := f.ShutdownDelay(); got != 90*time.Second {
		t.Errorf("ShutdownDelay() = %s", got)
	}
	if got := f.ShutdownCommand(); !reflect.DeepEqual(got, []string{"systemctl", "poweroff"}) {
		t.Errorf("ShutdownCommand() = %v", got)
	}
	if got := f.Notifier(); got != "notify-send" {
		t.Errorf("Notifier() = %s", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `poll_interval = `},
		{"bad duration", `poll_interval = "soon"`},
		{"zero interval", `poll_interval = "0s"`},
		{"negative delay", `shutdown_delay = "-1s"`},
		{"empty command", `shutdown_command = []`},
		{"unknown notifier", `notifier = "smoke-signal"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFile(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected error for %q", tt.content)
			}
		})
	}
}

func TestReloadKeepsOldConfigOnError(t *testing.T) {
	p := writeConfig(t, `shutdown_delay = "30s"`)
	f, err := NewFile(p)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(p, []byte(`shutdown_delay = "later"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.Load(); err == nil {
		t.Fatal("expected reload error")
	}
	if got := f.ShutdownDelay(); got != 30*time.Second {
		t.Errorf("ShutdownDelay() after failed reload = %s, want 30s", got)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	f := NewFileFromConfig(nil, "")

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), `poll_interval = "500ms"`) {
		t.Errorf("encoded config missing poll_interval:\n%s", buf.String())
	}

	f2, err := NewFile(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("NewFile() on encoded config error = %v", err)
	}
	assertDefaults(t, f2)
}
