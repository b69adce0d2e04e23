package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cumulus13/go-gntp"
)

const (
	gntpEventSong  = "song_change"
	gntpEventState = "player_state"
)

// gntpNotifier sends to a Growl-compatible server. GNTP has no replace-by-id,
// so every Show is a new popup and the returned id is always zero.
type gntpNotifier struct {
	client *gntp.Client
}

func newGNTPNotifier(cfg GNTPConfig) (*gntpNotifier, error) {
	client := gntp.NewClient("MPD Notify").
		WithHost(cfg.Host).
		WithPort(cfg.Port).
		WithTimeout(10 * time.Second)

	switch strings.ToLower(cfg.IconMode) {
	case "dataurl":
		client.WithIconMode(gntp.IconModeDataURL)
	case "fileurl":
		client.WithIconMode(gntp.IconModeFileURL)
	case "httpurl":
		client.WithIconMode(gntp.IconModeHttpURL)
	default:
		client.WithIconMode(gntp.IconModeBinary)
	}

	songChange := gntp.NewNotificationType(gntpEventSong).
		WithDisplayName("Song Changed")
	playerState := gntp.NewNotificationType(gntpEventState).
		WithDisplayName("Player State")

	if err := client.Register([]*gntp.NotificationType{songChange, playerState}); err != nil {
		return nil, fmt.Errorf("failed to register with GNTP at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &gntpNotifier{client: client}, nil
}

func (n *gntpNotifier) Show(_ NotificationID, d Draft) (NotificationID, error) {
	opts := gntp.NewNotifyOptions()
	if d.Icon != "" {
		if icon := loadIcon(d.Icon); icon != nil {
			opts.WithIcon(icon)
		}
	}

	if err := n.client.NotifyWithOptions(gntpEvent(d), d.Summary, d.Body, opts); err != nil {
		return 0, err
	}
	return 0, nil
}

func (n *gntpNotifier) Close() error { return nil }

func gntpEvent(d Draft) string {
	if d.Event == EventSong {
		return gntpEventSong
	}
	return gntpEventState
}

func loadIcon(path string) *gntp.Resource {
	artwork, err := os.ReadFile(path)
	if err != nil || len(artwork) == 0 {
		log.Printf("⚠️  Failed to read icon %s: %v", path, err)
		return nil
	}
	return gntp.LoadResourceFromBytes(artwork, imageContentType(artwork))
}

// imageContentType sniffs PNG by magic number and assumes JPEG otherwise.
func imageContentType(artwork []byte) string {
	if len(artwork) > 8 &&
		artwork[0] == 0x89 && artwork[1] == 0x50 && artwork[2] == 0x4E && artwork[3] == 0x47 {
		return "image/png"
	}
	return "image/jpeg"
}
