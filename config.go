package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type GNTPConfig struct {
	Host     string `toml:"host" default:"localhost"`
	Port     int    `toml:"port" default:"23053"`
	IconMode string `toml:"icon_mode" default:"binary"` // binary, dataurl, fileurl, httpurl
}

type Config struct {
	CoverArtMethod        CoverArtMethod `toml:"cover_art_method" default:"local"`
	MusicDirectory        string         `toml:"music_directory"`
	NotificationTimeoutMs *uint          `toml:"notification_timeout_ms"`
	MaxConnectionRetries  uint           `toml:"max_connection_retries" default:"5"`
	Format                string         `toml:"format" default:"%Artist - %Title"`

	Notifier               NotifierKind `toml:"notifier" default:"dbus"`
	NotifyOptions          bool         `toml:"notify_options"`
	ResetCursorOnReconnect bool         `toml:"reset_cursor_on_reconnect"`

	GNTP GNTPConfig `toml:"gntp"`
}

func configDir(home string) string {
	return filepath.Join(home, ".config", "mpd-notify")
}

// configPath honours MPD_NOTIFY_CONFIG, else ~/.config/mpd-notify/config.toml.
func configPath(home string) string {
	if p := os.Getenv("MPD_NOTIFY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(home), "config.toml")
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	method, err := ParseCoverArtMethod(string(c.CoverArtMethod))
	if err != nil {
		return err
	}
	c.CoverArtMethod = method

	kind, err := ParseNotifierKind(string(c.Notifier))
	if err != nil {
		return err
	}
	c.Notifier = kind

	if c.Format == "" {
		return errors.New("format must not be empty")
	}
	return nil
}

func (c *Config) Timeout() *time.Duration {
	if c.NotificationTimeoutMs == nil {
		return nil
	}
	return lo.ToPtr(time.Duration(*c.NotificationTimeoutMs) * time.Millisecond)
}

// loadEnvFile pulls MPD_HOST/MPD_PORT from ~/.config/mpd-notify/env without
// overriding anything already exported.
func loadEnvFile(home string) error {
	err := godotenv.Load(filepath.Join(configDir(home), "env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// mpdAddress returns host:port and the password from MPD_HOST's
// "password@host" form, if any.
func mpdAddress() (addr, password string) {
	host := getEnvOrDefault("MPD_HOST", "127.0.0.1")
	port := getEnvOrDefault("MPD_PORT", "6600")

	if i := strings.LastIndex(host, "@"); i >= 0 {
		password, host = host[:i], host[i+1:]
	}
	return net.JoinHostPort(host, port), password
}

// detectMusicDirectory scrapes music_directory from ~/.config/mpd/mpd.conf.
func detectMusicDirectory(home string) (string, error) {
	f, err := os.Open(filepath.Join(home, ".config", "mpd", "mpd.conf"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "music_directory") {
			continue
		}

		value := strings.TrimSpace(strings.TrimPrefix(line, "music_directory"))
		value = strings.Trim(value, `"'`)
		return expandHome(value, home), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.New("no music_directory in mpd.conf")
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
