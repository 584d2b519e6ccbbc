package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/batnotify/pkg/notify"
	"github.com/charlie0129/batnotify/pkg/power"
	"github.com/charlie0129/batnotify/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		CapacityPath:    ptr.To(power.DefaultCapacityPath),
		ACOnlinePath:    ptr.To(power.DefaultACOnlinePath),
		PollInterval:    ptr.To("500ms"),
		ShutdownDelay:   ptr.To("60s"),
		ShutdownCommand: []string{"poweroff"},
		Notifier:        ptr.To(notify.BackendDBus),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

// RawFileConfig is the on-disk form. Unset fields fall back to defaults.
type RawFileConfig struct {
	CapacityPath    *string  `toml:"capacity_path,omitempty" json:"capacityPath,omitempty"`
	ACOnlinePath    *string  `toml:"ac_online_path,omitempty" json:"acOnlinePath,omitempty"`
	PollInterval    *string  `toml:"poll_interval,omitempty" json:"pollInterval,omitempty"`
	ShutdownDelay   *string  `toml:"shutdown_delay,omitempty" json:"shutdownDelay,omitempty"`
	ShutdownCommand []string `toml:"shutdown_command,omitempty" json:"shutdownCommand,omitempty"`
	Notifier        *string  `toml:"notifier,omitempty" json:"notifier,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		CapacityPath:    ptr.To(c.CapacityPath()),
		ACOnlinePath:    ptr.To(c.ACOnlinePath()),
		PollInterval:    ptr.To(c.PollInterval().String()),
		ShutdownDelay:   ptr.To(c.ShutdownDelay().String()),
		ShutdownCommand: c.ShutdownCommand(),
		Notifier:        ptr.To(c.Notifier()),
	}

	return rawConfig, nil
}

func (c *RawFileConfig) validate() error {
	if c.PollInterval != nil {
		d, err := time.ParseDuration(*c.PollInterval)
		if err != nil {
			return pkgerrors.Wrapf(err, "invalid poll_interval")
		}
		if d <= 0 {
			return fmt.Errorf("poll_interval must be positive, got %s", d)
		}
	}

	if c.ShutdownDelay != nil {
		d, err := time.ParseDuration(*c.ShutdownDelay)
		if err != nil {
			return pkgerrors.Wrapf(err, "invalid shutdown_delay")
		}
		if d < 0 {
			return fmt.Errorf("shutdown_delay must not be negative, got %s", d)
		}
	}

	if c.ShutdownCommand != nil && (len(c.ShutdownCommand) == 0 || c.ShutdownCommand[0] == "") {
		return fmt.Errorf("shutdown_command must name a program")
	}

	if c.Notifier != nil {
		switch *c.Notifier {
		case notify.BackendDBus, notify.BackendNotifySend:
		default:
			return fmt.Errorf("notifier must be %q or %q, got %q", notify.BackendDBus, notify.BackendNotifySend, *c.Notifier)
		}
	}

	return nil
}

func stringOr(v, def *string) string {
	if v != nil {
		return *v
	}
	return *def
}

func durationOr(v, def *string) time.Duration {
	d, err := time.ParseDuration(stringOr(v, def))
	if err != nil {
		// Load rejects invalid durations, so only a hand-built config gets here.
		d, _ = time.ParseDuration(*def)
	}
	return d
}

func (f *File) CapacityPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return stringOr(f.c.CapacityPath, defaultFileConfig.CapacityPath)
}

func (f *File) ACOnlinePath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return stringOr(f.c.ACOnlinePath, defaultFileConfig.ACOnlinePath)
}

func (f *File) PollInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return durationOr(f.c.PollInterval, defaultFileConfig.PollInterval)
}

func (f *File) ShutdownDelay() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return durationOr(f.c.ShutdownDelay, defaultFileConfig.ShutdownDelay)
}

func (f *File) ShutdownCommand() []string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	cmd := f.c.ShutdownCommand
	if cmd == nil {
		cmd = defaultFileConfig.ShutdownCommand
	}

	return append([]string(nil), cmd...)
}

func (f *File) Notifier() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return stringOr(f.c.Notifier, defaultFileConfig.Notifier)
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	md, err := toml.Decode(string(b), &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to decode config from file %s", f.filepath)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logrus.WithField("keys", undecoded).Warnf("unknown keys in %s", f.filepath)
	}

	if err := conf.validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}

	// Keep the old config on failure; only swap once everything checks out.
	f.c = &conf

	return nil
}

// Encode writes the effective configuration, defaults included, as TOML.
func (f *File) Encode(w io.Writer) error {
	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		return err
	}

	return toml.NewEncoder(w).Encode(raw)
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"capacityPath":    f.CapacityPath(),
		"acOnlinePath":    f.ACOnlinePath(),
		"pollInterval":    f.PollInterval(),
		"shutdownDelay":   f.ShutdownDelay(),
		"shutdownCommand": f.ShutdownCommand(),
		"notifier":        f.Notifier(),
	}
}
