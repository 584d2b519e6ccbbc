package notify

import (
	"os/exec"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NotifySend shells out to notify-send(1).
type NotifySend struct {
	// Path is the notify-send executable.
	Path string
}

var _ Notifier = &NotifySend{}

func NewNotifySend() *NotifySend {
	return &NotifySend{Path: "notify-send"}
}

func notifySendArgs(n Notification) []string {
	return []string{
		"--app-name=" + AppName,
		"--urgency=" + n.Urgency.String(),
		"--expire-time=" + strconv.Itoa(int(timeoutMillis(n.Timeout))),
		n.Summary,
		n.Body,
	}
}

func (s *NotifySend) Notify(n Notification) (uint32, error) {
	args := notifySendArgs(n)
	logrus.WithField("args", args).Trace("running notify-send")

	out, err := exec.Command(s.Path, args...).CombinedOutput()
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "notify-send failed: %s", string(out))
	}

	return 0, nil
}

func (s *NotifySend) Close(uint32) error {
	return ErrCloseUnsupported
}
