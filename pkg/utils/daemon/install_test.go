package daemon

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func fakeSystemctl(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	old := systemctl
	systemctl = func(args ...string) error {
		calls = append(calls, args)
		return nil
	}
	t.Cleanup(func() { systemctl = old })
	return &calls
}

func TestRenderUnit(t *testing.T) {
	unit := renderUnit("/usr/bin/batnotify", "/home/u/my config.toml", "/run/user/1000/batnotify.sock")

	want := `ExecStart="/usr/bin/batnotify" daemon --config "/home/u/my config.toml" --daemon-socket "/run/user/1000/batnotify.sock"`
	if !strings.Contains(unit, want) {
		t.Errorf("unit missing %q:\n%s", want, unit)
	}
	if strings.Contains(unit, "@") {
		t.Errorf("unit has unreplaced placeholders:\n%s", unit)
	}
}

func TestInstallUninstall(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	calls := fakeSystemctl(t)

	if err := Install("/etc/batnotify.toml", "/tmp/b.sock"); err != nil {
		t.Fatal(err)
	}

	unitPath, err := UnitPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(unitPath) != unitName {
		t.Errorf("UnitPath() = %q", unitPath)
	}
	b, err := os.ReadFile(unitPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `--config "/etc/batnotify.toml"`) {
		t.Errorf("unexpected unit:\n%s", b)
	}

	if err := Uninstall(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(unitPath); !os.IsNotExist(err) {
		t.Errorf("unit still exists: %v", err)
	}

	want := [][]string{
		{"daemon-reload"},
		{"enable", "--now", unitName},
		{"disable", "--now", unitName},
		{"daemon-reload"},
	}
	if !reflect.DeepEqual(*calls, want) {
		t.Errorf("systemctl calls = %v, want %v", *calls, want)
	}

	// Uninstalling twice is a no-op.
	if err := Uninstall(); err != nil {
		t.Errorf("second Uninstall() error = %v", err)
	}
	if len(*calls) != len(want) {
		t.Errorf("second Uninstall() called systemctl")
	}
}
