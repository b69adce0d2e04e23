package main

import (
	"errors"
	"fmt"
)

// NotificationID is a notifier handle. Zero means no live popup is tracked.
type NotificationID uint32

// Cursor is the agent's memory of the last accepted song and the live popup.
// Only Decide's results and the show path mutate it.
type Cursor struct {
	LastSong SongID
	Handle   NotificationID
}

type Kind int

const (
	KindStopped Kind = iota
	KindNowPlaying
	KindPlayingAgain
)

func (k Kind) Summary() string {
	switch k {
	case KindNowPlaying:
		return "Now Playing"
	case KindPlayingAgain:
		return "Playing Again"
	default:
		return "MPD Stopped"
	}
}

func (k Kind) Event() Event {
	if k == KindStopped {
		return EventState
	}
	return EventSong
}

func (k Kind) String() string {
	switch k {
	case KindNowPlaying:
		return "now-playing"
	case KindPlayingAgain:
		return "playing-again"
	default:
		return "stopped"
	}
}

// Decision is the outcome of one player tick. Emit false means suppressed.
type Decision struct {
	Emit   bool
	Kind   Kind
	Record SongID
}

var ErrMissingElapsed = errors.New("player reports playing without elapsed time")

func suppressed() Decision { return Decision{} }

func emit(kind Kind, record SongID) Decision {
	return Decision{Emit: true, Kind: kind, Record: record}
}

// Decide turns a polled status into a notification decision against the
// previous cursor. It never mutates anything; see Cursor.Apply.
func Decide(prev Cursor, st PlaybackStatus) (Decision, error) {
	switch st.State {
	case StateStopped:
		return emit(KindStopped, SongID{}), nil
	case StatePaused:
		return suppressed(), nil
	}

	current := st.SongID
	if !st.HasElapsed {
		return Decision{}, fmt.Errorf("song %s: %w", current, ErrMissingElapsed)
	}

	if current != prev.LastSong {
		return emit(KindNowPlaying, current), nil
	}

	// Seeking back to zero also lands here. Elapsed is too coarse to tell.
	if st.Elapsed == 0 {
		return emit(KindPlayingAgain, current), nil
	}

	// resumed from pause
	return suppressed(), nil
}

// Apply records the decision's song. Stop and suppressed ticks leave LastSong alone.
func (c *Cursor) Apply(d Decision) {
	if !d.Emit || d.Kind == KindStopped {
		return
	}
	c.LastSong = d.Record
}
