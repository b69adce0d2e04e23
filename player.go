package main

import (
	"errors"
	"fmt"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/fhs/gompd/v2/mpd"
)

// Subsystem is an MPD idle subsystem name.
type Subsystem string

const (
	SubsystemPlayer  Subsystem = "player"
	SubsystemOptions Subsystem = "options"
)

type PlayState int

const (
	StateStopped PlayState = iota
	StatePlaying
	StatePaused
)

func (s PlayState) String() string {
	switch s {
	case StatePlaying:
		return "play"
	case StatePaused:
		return "pause"
	default:
		return "stop"
	}
}

// SongID is an optional MPD song id. The zero value means "no song".
type SongID struct {
	ID    int
	Valid bool
}

func SomeSong(id int) SongID { return SongID{ID: id, Valid: true} }

func (s SongID) String() string {
	if !s.Valid {
		return "none"
	}
	return strconv.Itoa(s.ID)
}

// PlaybackStatus is one polled `status` snapshot.
type PlaybackStatus struct {
	State      PlayState
	SongID     SongID
	Elapsed    time.Duration
	HasElapsed bool

	Random  bool
	Repeat  bool
	Single  string
	Consume string
}

// Song is one `currentsong` snapshot. Tag keys are matched case-sensitively.
type Song struct {
	ID       SongID
	FilePath string
	Title    *string
	Tags     map[string]string
}

var (
	ErrNoAlbumArt    = errors.New("no album art")
	ErrNoCurrentSong = errors.New("no current song")
	ErrProtocol      = errors.New("malformed MPD response")
)

// PlayerSource is the daemon connection the agent drives.
type PlayerSource interface {
	WaitForChanges(subsystems ...Subsystem) ([]Subsystem, error)
	Status() (PlaybackStatus, error)
	CurrentSong() (*Song, error)
	AlbumArt(uri string) ([]byte, error)
	Close() error
}

// Dialer opens a PlayerSource to addr.
type Dialer func(addr, password string) (PlayerSource, error)

type mpdSource struct {
	conn *mpd.Client
}

func dialMPD(addr, password string) (PlayerSource, error) {
	client, err := mpd.DialAuthenticated("tcp", addr, password)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPD at %s: %w", addr, err)
	}

	// Test the connection
	if err := client.Ping(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping to MPD at %s failed: %w", addr, err)
	}

	return &mpdSource{conn: client}, nil
}

func (m *mpdSource) WaitForChanges(subsystems ...Subsystem) ([]Subsystem, error) {
	attrs, err := m.conn.Command("idle %s", idleArgs(subsystems)).AttrsList("changed")
	if err != nil {
		return nil, fmt.Errorf("idle: %w", err)
	}

	changed := make([]Subsystem, 0, len(attrs))
	for _, a := range attrs {
		if name, ok := a["changed"]; ok {
			changed = append(changed, Subsystem(name))
		}
	}
	return changed, nil
}

// idleArgs renders subsystem names space-separated. Command only quotes
// plain strings, so a Stringer keeps them as separate keywords.
type idleArgs []Subsystem

func (a idleArgs) String() string {
	names := make([]string, len(a))
	for i, s := range a {
		names[i] = string(s)
	}
	return strings.Join(names, " ")
}

func (m *mpdSource) Status() (PlaybackStatus, error) {
	attrs, err := m.conn.Status()
	if err != nil {
		return PlaybackStatus{}, fmt.Errorf("failed to get status: %w", err)
	}
	return parseStatus(attrs)
}

func (m *mpdSource) CurrentSong() (*Song, error) {
	attrs, err := m.conn.CurrentSong()
	if err != nil {
		return nil, fmt.Errorf("failed to get current song: %w", err)
	}
	return parseSong(attrs)
}

// AlbumArt asks for the folder art first and falls back to embedded art.
func (m *mpdSource) AlbumArt(uri string) ([]byte, error) {
	artwork, err := m.conn.AlbumArt(uri)
	if err == nil && len(artwork) > 0 {
		return artwork, nil
	}
	if err != nil && !isNoArt(err) {
		return nil, fmt.Errorf("albumart %q: %w", uri, err)
	}

	artwork, err = m.conn.ReadPicture(uri)
	if err == nil && len(artwork) > 0 {
		return artwork, nil
	}
	if err != nil && !isNoArt(err) {
		return nil, fmt.Errorf("readpicture %q: %w", uri, err)
	}

	return nil, ErrNoAlbumArt
}

func (m *mpdSource) Close() error {
	return m.conn.Close()
}

// errNoBinary is what gompd reports when a binary command gets a bare OK,
// which is how readpicture answers for a file without an embedded picture.
const errNoBinary = textproto.ProtocolError("no binary data found in response")

// isNoArt reports whether err means the song simply has no artwork:
// ACK 50 (no such file) or an empty binary reply.
func isNoArt(err error) bool {
	var ack mpd.Error
	if errors.As(err, &ack) {
		return ack.Code == mpd.ErrorNoExist
	}
	var proto textproto.ProtocolError
	return errors.As(err, &proto) && proto == errNoBinary
}

func parseStatus(attrs mpd.Attrs) (PlaybackStatus, error) {
	var st PlaybackStatus

	switch attrs["state"] {
	case "play":
		st.State = StatePlaying
	case "pause":
		st.State = StatePaused
	case "stop", "":
		st.State = StateStopped
	default:
		return st, fmt.Errorf("%w: unknown state %q", ErrProtocol, attrs["state"])
	}

	if raw, ok := attrs["songid"]; ok {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return st, fmt.Errorf("%w: songid %q", ErrProtocol, raw)
		}
		st.SongID = SomeSong(id)
	}

	if raw, ok := attrs["elapsed"]; ok {
		sec, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return st, fmt.Errorf("%w: elapsed %q", ErrProtocol, raw)
		}
		st.Elapsed = time.Duration(sec * float64(time.Second))
		st.HasElapsed = true
	}

	st.Random = attrs["random"] == "1"
	st.Repeat = attrs["repeat"] == "1"
	st.Single = attrs["single"]
	st.Consume = attrs["consume"]

	return st, nil
}

func parseSong(attrs mpd.Attrs) (*Song, error) {
	file, ok := attrs["file"]
	if !ok {
		return nil, ErrNoCurrentSong
	}

	song := &Song{FilePath: file, Tags: make(map[string]string)}

	if raw, ok := attrs["Id"]; ok {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: Id %q", ErrProtocol, raw)
		}
		song.ID = SomeSong(id)
	}

	if title, ok := attrs["Title"]; ok {
		song.Title = &title
	}

	for key, value := range attrs {
		switch key {
		case "file", "Id", "Title":
			continue
		}
		song.Tags[key] = value
	}

	return song, nil
}
