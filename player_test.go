package main

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/fhs/gompd/v2/mpd"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		attrs   mpd.Attrs
		want    PlaybackStatus
		wantErr bool
	}{
		{
			name:  "playing",
			attrs: mpd.Attrs{"state": "play", "songid": "12", "elapsed": "61.500", "random": "1", "repeat": "0", "single": "oneshot", "consume": "0"},
			want: PlaybackStatus{
				State: StatePlaying, SongID: SomeSong(12), Elapsed: 61500 * time.Millisecond, HasElapsed: true,
				Random: true, Single: "oneshot", Consume: "0",
			},
		},
		{
			name:  "just started",
			attrs: mpd.Attrs{"state": "play", "songid": "3", "elapsed": "0.000"},
			want:  PlaybackStatus{State: StatePlaying, SongID: SomeSong(3), HasElapsed: true},
		},
		{
			name:  "stopped with empty queue",
			attrs: mpd.Attrs{"state": "stop"},
			want:  PlaybackStatus{State: StateStopped},
		},
		{
			name:  "paused",
			attrs: mpd.Attrs{"state": "pause", "songid": "0", "elapsed": "4.5"},
			want:  PlaybackStatus{State: StatePaused, SongID: SomeSong(0), Elapsed: 4500 * time.Millisecond, HasElapsed: true},
		},
		{name: "unknown state", attrs: mpd.Attrs{"state": "dancing"}, wantErr: true},
		{name: "bad songid", attrs: mpd.Attrs{"state": "play", "songid": "x"}, wantErr: true},
		{name: "bad elapsed", attrs: mpd.Attrs{"state": "play", "songid": "1", "elapsed": "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStatus(tt.attrs)
			if tt.wantErr {
				if !errors.Is(err, ErrProtocol) {
					t.Fatalf("parseStatus() error = %v, want ErrProtocol", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseStatus() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSong(t *testing.T) {
	song, err := parseSong(mpd.Attrs{
		"file":        "Artist/Album/01.flac",
		"Id":          "12",
		"Title":       "Roygbiv",
		"Artist":      "Boards of Canada",
		"AlbumArtist": "Boards of Canada",
		"Date":        "1998",
	})
	if err != nil {
		t.Fatalf("parseSong() error = %v", err)
	}

	if song.FilePath != "Artist/Album/01.flac" {
		t.Errorf("FilePath = %q", song.FilePath)
	}
	if song.ID != SomeSong(12) {
		t.Errorf("ID = %s, want 12", song.ID)
	}
	if song.Title == nil || *song.Title != "Roygbiv" {
		t.Errorf("Title = %v, want Roygbiv", song.Title)
	}
	if song.Tags["Date"] != "1998" || song.Tags["AlbumArtist"] != "Boards of Canada" {
		t.Errorf("Tags = %v", song.Tags)
	}
	if _, ok := song.Tags["file"]; ok {
		t.Error("file should not be a tag")
	}
}

func TestParseSongUntitled(t *testing.T) {
	song, err := parseSong(mpd.Attrs{"file": "x.ogg"})
	if err != nil {
		t.Fatalf("parseSong() error = %v", err)
	}
	if song.Title != nil {
		t.Errorf("Title = %q, want nil", *song.Title)
	}
	if song.ID.Valid {
		t.Errorf("ID = %s, want none", song.ID)
	}
}

func TestParseSongEmpty(t *testing.T) {
	if _, err := parseSong(mpd.Attrs{}); !errors.Is(err, ErrNoCurrentSong) {
		t.Errorf("parseSong() error = %v, want ErrNoCurrentSong", err)
	}
}

func TestIdleArgs(t *testing.T) {
	if got := idleArgs(watchedSubsystems).String(); got != "player options" {
		t.Errorf("idleArgs = %q, want %q", got, "player options")
	}
}

func TestIsNoArt(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no such file", mpd.Error{Code: mpd.ErrorNoExist, CommandName: "albumart", Message: "No file exists"}, true},
		{"wrapped no such file", fmt.Errorf("albumart: %w", mpd.Error{Code: mpd.ErrorNoExist}), true},
		{"empty binary reply", errNoBinary, true},
		{"permission", mpd.Error{Code: mpd.ErrorPermission, CommandName: "albumart", Message: "you don't have permission"}, false},
		{"bad terminator", textproto.ProtocolError("wrong binary data terminator: want 0x0a, got 41"), false},
		{"message text alone", errors.New("command 'albumart' failed: No file exists"), false},
		{"connection reset", syscall.ECONNRESET, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNoArt(tt.err); got != tt.want {
				t.Errorf("isNoArt(%v) = %t, want %t", tt.err, got, tt.want)
			}
		})
	}
}

// serveMPD runs a one-connection MPD stand-in. replies maps a command name
// to the raw response; unknown commands get a bare OK.
func serveMPD(t *testing.T, replies map[string]string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		fmt.Fprint(conn, "OK MPD 0.23.5\n")
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			name, _, _ := strings.Cut(scanner.Text(), " ")
			reply, ok := replies[name]
			if !ok {
				reply = "OK\n"
			}
			if _, err := fmt.Fprint(conn, reply); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func TestMPDSourceAlbumArt(t *testing.T) {
	const noFile = "ACK [50@0] {albumart} No file exists\n"

	tests := []struct {
		name    string
		replies map[string]string
		want    string
		wantErr error
	}{
		{
			name:    "folder art",
			replies: map[string]string{"albumart": "size: 3\nbinary: 3\njpg\nOK\n"},
			want:    "jpg",
		},
		{
			name: "embedded art",
			replies: map[string]string{
				"albumart":    noFile,
				"readpicture": "size: 3\ntype: image/png\nbinary: 3\npng\nOK\n",
			},
			want: "png",
		},
		{
			name:    "no embedded picture",
			replies: map[string]string{"albumart": noFile, "readpicture": "OK\n"},
			wantErr: ErrNoAlbumArt,
		},
		{
			name:    "missing everywhere",
			replies: map[string]string{"albumart": noFile, "readpicture": "ACK [50@0] {readpicture} No file exists\n"},
			wantErr: ErrNoAlbumArt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := dialMPD(serveMPD(t, tt.replies), "")
			if err != nil {
				t.Fatalf("dialMPD() error = %v", err)
			}
			defer src.Close()

			got, err := src.AlbumArt("a/b.flac")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AlbumArt() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AlbumArt() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("AlbumArt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMPDSourceAlbumArtPermission(t *testing.T) {
	src, err := dialMPD(serveMPD(t, map[string]string{
		"albumart": "ACK [4@0] {albumart} you don't have permission for \"albumart\"\n",
	}), "")
	if err != nil {
		t.Fatalf("dialMPD() error = %v", err)
	}
	defer src.Close()

	_, err = src.AlbumArt("a/b.flac")
	if err == nil || errors.Is(err, ErrNoAlbumArt) {
		t.Errorf("AlbumArt() error = %v, want a real failure", err)
	}
}
