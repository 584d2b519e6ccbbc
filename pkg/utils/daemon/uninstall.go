package daemon

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Uninstall stops and disables the user unit, then removes it.
func Uninstall() error {
	unitPath, err := UnitPath()
	if err != nil {
		return err
	}

	// if the file doesn't exist, there is nothing to stop either
	_, err = os.Stat(unitPath)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("%s does not exist, nothing to uninstall", unitPath)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", unitPath, err)
	}

	logrus.Infof("stopping batnotify")

	if err := systemctl("disable", "--now", unitName); err != nil {
		return err
	}

	logrus.Infof("removing %s", unitPath)

	err = os.Remove(unitPath)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", unitPath, err)
	}

	return systemctl("daemon-reload")
}
