package notify

import (
	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	dbusDest   = "org.freedesktop.Notifications"
	dbusPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusNotify = dbusDest + ".Notify"
	dbusClose  = dbusDest + ".CloseNotification"
)

// DBus talks to the notification server on the session bus.
type DBus struct {
	conn *dbus.Conn
}

var _ Notifier = &DBus{}

// NewDBus connects to the session bus.
func NewDBus() (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to session bus")
	}

	return &DBus{conn: conn}, nil
}

func notifyHints(u Urgency) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(u)),
	}
}

func (d *DBus) Notify(n Notification) (uint32, error) {
	logrus.WithFields(logrus.Fields{
		"summary": n.Summary,
		"urgency": n.Urgency,
		"timeout": n.Timeout,
	}).Trace("sending notification over dbus")

	obj := d.conn.Object(dbusDest, dbusPath)
	call := obj.Call(dbusNotify, 0,
		AppName,
		uint32(0), // replaces_id
		"",        // app_icon
		n.Summary,
		n.Body,
		[]string{}, // actions
		notifyHints(n.Urgency),
		timeoutMillis(n.Timeout),
	)
	if call.Err != nil {
		return 0, pkgerrors.Wrapf(call.Err, "failed to call %s", dbusNotify)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read notification id")
	}

	return id, nil
}

func (d *DBus) Close(id uint32) error {
	obj := d.conn.Object(dbusDest, dbusPath)
	if err := obj.Call(dbusClose, 0, id).Err; err != nil {
		return pkgerrors.Wrapf(err, "failed to close notification %d", id)
	}
	return nil
}
