// Package power reads battery charge and AC adapter state from sysfs.
package power

import (
	"errors"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCapacityPath = "/sys/class/power_supply/BAT0/capacity"
	DefaultACOnlinePath = "/sys/class/power_supply/ADP1/online"
)

// ErrMalformed is returned when a power supply file does not hold the
// expected integer.
var ErrMalformed = errors.New("malformed power supply value")

// Reader reports the battery percentage and whether AC power is connected.
type Reader interface {
	Percentage() (int, error)
	PluggedIn() (bool, error)
}

// Sysfs reads the kernel's power_supply class files.
type Sysfs struct {
	CapacityPath string
	ACOnlinePath string
}

var _ Reader = &Sysfs{}

func NewSysfs(capacityPath, acOnlinePath string) *Sysfs {
	return &Sysfs{
		CapacityPath: capacityPath,
		ACOnlinePath: acOnlinePath,
	}
}

// Percentage returns the battery charge in [0, 100].
func (s *Sysfs) Percentage() (int, error) {
	v, err := readInt(s.CapacityPath)
	if err != nil {
		return 0, err
	}

	if v < 0 || v > 100 {
		return 0, pkgerrors.Wrapf(ErrMalformed, "capacity %d out of range in %s", v, s.CapacityPath)
	}

	logrus.Tracef("Percentage returned %d", v)
	return v, nil
}

// PluggedIn reports true for any non-zero value in the online file.
func (s *Sysfs) PluggedIn() (bool, error) {
	v, err := readInt(s.ACOnlinePath)
	if err != nil {
		return false, err
	}

	logrus.Tracef("PluggedIn returned %t", v != 0)
	return v != 0, nil
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read %s", path)
	}

	s := strings.TrimSpace(string(b))
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgerrors.Wrapf(ErrMalformed, "%q in %s", s, path)
	}

	return v, nil
}
