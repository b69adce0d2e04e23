package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	appName              = "MPD"
	notificationCategory = "MPD"
)

// Event groups popups for transports that let the user filter by type.
type Event int

const (
	EventState Event = iota // stopped, connection and options popups
	EventSong
)

// Draft is the content of one popup, built fresh for every decision.
type Draft struct {
	Event   Event
	Summary string
	Body    string
	Icon    string
	Timeout *time.Duration
}

// Notifier shows a popup. A non-zero replaces asks the transport to update
// that popup in place. The returned id is zero when the transport cannot
// replace popups.
type Notifier interface {
	Show(replaces NotificationID, d Draft) (NotificationID, error)
	Close() error
}

type NotifierKind string

const (
	NotifierDBus  NotifierKind = "dbus"
	NotifierGNTP  NotifierKind = "gntp"
	NotifierBeeep NotifierKind = "beeep"
)

func ParseNotifierKind(s string) (NotifierKind, error) {
	switch k := NotifierKind(strings.ToLower(strings.TrimSpace(s))); k {
	case NotifierDBus, NotifierGNTP, NotifierBeeep:
		return k, nil
	}
	return "", fmt.Errorf("unknown notifier %q (want dbus, gntp or beeep)", s)
}

func newNotifier(cfg *Config) (Notifier, error) {
	switch cfg.Notifier {
	case NotifierGNTP:
		n, err := newGNTPNotifier(cfg.GNTP)
		if err != nil {
			return nil, err
		}
		return n, nil
	case NotifierBeeep:
		return newBeeepNotifier(), nil
	default:
		n, err := newDBusNotifier()
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

// dbusNotifier talks org.freedesktop.Notifications on the session bus.
type dbusNotifier struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func newDBusNotifier() (*dbusNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &dbusNotifier{
		conn: conn,
		obj:  conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications"),
	}, nil
}

func (n *dbusNotifier) Show(replaces NotificationID, d Draft) (NotificationID, error) {
	call := n.obj.Call("org.freedesktop.Notifications.Notify", 0, notifyArgs(replaces, d)...)
	if err := call.Err; err != nil {
		return 0, fmt.Errorf("notification failed: %w", err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to get notification ID: %w", err)
	}
	return NotificationID(id), nil
}

func (n *dbusNotifier) Close() error {
	return n.conn.Close()
}

// notifyArgs builds the Notify argument list:
// app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout.
func notifyArgs(replaces NotificationID, d Draft) []interface{} {
	return []interface{}{
		appName,
		uint32(replaces),
		d.Icon,
		d.Summary,
		d.Body,
		[]string{},
		map[string]dbus.Variant{
			"category": dbus.MakeVariant(notificationCategory),
		},
		expireTimeout(d.Timeout),
	}
}

// expireTimeout maps an optional duration to milliseconds; -1 is the server default.
// Values past the int32 range saturate.
func expireTimeout(timeout *time.Duration) int32 {
	if timeout == nil {
		return -1
	}
	ms := timeout.Milliseconds()
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(ms)
}
