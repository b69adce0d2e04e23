package main

import (
	"fmt"
	"log"
	"strings"
)

const (
	summaryDisconnected = "MPD Disconnected"
	summaryReconnected  = "MPD Reconnected"
	summaryOptions      = "MPD Options"
)

var watchedSubsystems = []Subsystem{SubsystemPlayer, SubsystemOptions}

// Agent is the driver loop: wait, poll, decide, format, show.
type Agent struct {
	cfg      *Config
	sup      *Supervisor
	src      PlayerSource
	notifier Notifier
	art      *CoverArtResolver
	console  *console
	debug    bool

	cursor Cursor
}

func NewAgent(cfg *Config, sup *Supervisor, src PlayerSource, notifier Notifier, art *CoverArtResolver, debug bool) *Agent {
	return &Agent{
		cfg:      cfg,
		sup:      sup,
		src:      src,
		notifier: notifier,
		art:      art,
		debug:    debug,
	}
}

// Run blocks until a fatal error. It never returns nil.
func (a *Agent) Run() error {
	for {
		if err := a.tick(); err != nil {
			if err := a.handleError(err); err != nil {
				return err
			}
		}
	}
}

func (a *Agent) tick() error {
	changed, err := a.src.WaitForChanges(watchedSubsystems...)
	if err != nil {
		return err
	}

	for _, subsystem := range changed {
		switch subsystem {
		case SubsystemPlayer:
			err = a.playerUpdated()
		case SubsystemOptions:
			err = a.optionsUpdated()
		default:
			if a.debug {
				log.Printf("⚠️  Ignoring unexpected subsystem %q", subsystem)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) handleError(err error) error {
	class, kind := Classify(err)
	switch class {
	case ClassTransient:
		log.Printf("📡 Lost connection to MPD (%s): %v", kind, err)
		return a.reconnect()
	case ClassFatal:
		return err
	default:
		log.Printf("⚠️  Skipping update: %v", err)
		return nil
	}
}

// reconnect announces the drop, blocks in Connect, then announces the
// recovery. LastSong survives unless reset_cursor_on_reconnect is set.
func (a *Agent) reconnect() error {
	a.show(Draft{Summary: summaryDisconnected, Timeout: a.cfg.Timeout()})

	if err := a.src.Close(); err != nil && a.debug {
		log.Printf("⚠️  Closing dead connection: %v", err)
	}

	src, err := a.sup.Connect()
	if err != nil {
		return fmt.Errorf("reconnect failed: %w", err)
	}
	a.src = src
	log.Printf("✅ Reconnected to MPD at %s", a.sup.Addr)

	a.cursor.Handle = 0
	if a.cfg.ResetCursorOnReconnect {
		a.cursor.LastSong = SongID{}
	}

	a.show(Draft{Summary: summaryReconnected, Timeout: a.cfg.Timeout()})
	return nil
}

func (a *Agent) playerUpdated() error {
	status, err := a.src.Status()
	if err != nil {
		return err
	}

	decision, err := Decide(a.cursor, status)
	if err != nil {
		return err
	}
	if a.debug {
		log.Printf("🐛 state=%s song=%s last=%s emit=%t kind=%s",
			status.State, status.SongID, a.cursor.LastSong, decision.Emit, decision.Kind)
	}
	if !decision.Emit {
		return nil
	}
	a.cursor.Apply(decision)

	draft := Draft{
		Event:   decision.Kind.Event(),
		Summary: decision.Kind.Summary(),
		Timeout: a.cfg.Timeout(),
	}
	if decision.Kind != KindStopped {
		song, err := a.src.CurrentSong()
		if err != nil {
			return err
		}
		draft.Body = FormatBody(a.cfg.Format, song)
		draft.Icon = a.art.Resolve(a.src, song)
	}

	a.show(draft)
	return nil
}

func (a *Agent) optionsUpdated() error {
	if !a.cfg.NotifyOptions {
		return nil
	}

	status, err := a.src.Status()
	if err != nil {
		return err
	}

	a.show(Draft{
		Summary: summaryOptions,
		Body:    formatOptions(status),
		Timeout: a.cfg.Timeout(),
	})
	return nil
}

func formatOptions(st PlaybackStatus) string {
	return strings.Join([]string{
		"random: " + onOff(st.Random),
		"repeat: " + onOff(st.Repeat),
		"single: " + flagValue(st.Single),
		"consume: " + flagValue(st.Consume),
	}, "\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// flagValue renders single/consume, which may also be "oneshot".
func flagValue(v string) string {
	switch v {
	case "1":
		return "on"
	case "0", "":
		return "off"
	}
	return v
}

// show replaces the tracked popup when there is one. On failure the handle
// is dropped so the next popup starts fresh.
func (a *Agent) show(d Draft) {
	a.console.echo(d)

	id, err := a.notifier.Show(a.cursor.Handle, d)
	if err != nil {
		log.Printf("⚠️  Failed to show notification: %v", err)
		a.cursor.Handle = 0
		return
	}
	a.cursor.Handle = id
}
