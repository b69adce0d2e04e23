package main

import (
	"errors"
	"io"
	"time"
)

type waitStep struct {
	changed []Subsystem
	err     error
}

type fakeSource struct {
	waits    []waitStep
	statuses []PlaybackStatus
	song     *Song
	songErr  error
	art      []byte
	artErr   error

	statusCalls int
	artCalls    int
	closed      bool
}

func (f *fakeSource) WaitForChanges(...Subsystem) ([]Subsystem, error) {
	if len(f.waits) == 0 {
		return nil, io.EOF
	}
	step := f.waits[0]
	f.waits = f.waits[1:]
	return step.changed, step.err
}

func (f *fakeSource) Status() (PlaybackStatus, error) {
	if len(f.statuses) == 0 {
		return PlaybackStatus{}, errors.New("fake: no status queued")
	}
	st := f.statuses[0]
	f.statuses = f.statuses[1:]
	f.statusCalls++
	return st, nil
}

func (f *fakeSource) CurrentSong() (*Song, error) {
	if f.songErr != nil {
		return nil, f.songErr
	}
	return f.song, nil
}

func (f *fakeSource) AlbumArt(string) ([]byte, error) {
	f.artCalls++
	return f.art, f.artErr
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type shown struct {
	replaces NotificationID
	draft    Draft
}

type fakeNotifier struct {
	shown  []shown
	nextID NotificationID
	fail   map[int]bool // by call index
}

func (n *fakeNotifier) Show(replaces NotificationID, d Draft) (NotificationID, error) {
	idx := len(n.shown)
	n.shown = append(n.shown, shown{replaces: replaces, draft: d})
	if n.fail[idx] {
		return 0, errors.New("fake: display rejected")
	}
	if replaces != 0 {
		return replaces, nil
	}
	n.nextID++
	return n.nextID, nil
}

func (n *fakeNotifier) Close() error { return nil }

func (n *fakeNotifier) summaries() []string {
	out := make([]string, len(n.shown))
	for i, s := range n.shown {
		out[i] = s.draft.Summary
	}
	return out
}

func playing(id int, elapsed time.Duration) PlaybackStatus {
	return PlaybackStatus{State: StatePlaying, SongID: SomeSong(id), Elapsed: elapsed, HasElapsed: true}
}

func paused(id int) PlaybackStatus {
	return PlaybackStatus{State: StatePaused, SongID: SomeSong(id), Elapsed: 3 * time.Second, HasElapsed: true}
}

func stopped() PlaybackStatus {
	return PlaybackStatus{State: StateStopped}
}

func strPtr(s string) *string { return &s }
