package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

type CoverArtMethod string

const (
	CoverArtNone   CoverArtMethod = "none"
	CoverArtLocal  CoverArtMethod = "local"
	CoverArtNative CoverArtMethod = "native"
)

func ParseCoverArtMethod(s string) (CoverArtMethod, error) {
	switch m := CoverArtMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case CoverArtNone, CoverArtLocal, CoverArtNative:
		return m, nil
	}
	return "", fmt.Errorf("unknown cover art method %q (want none, local or native)", s)
}

const coverFileName = "cover.jpg"

// CoverArtResolver picks an icon for a song.
type CoverArtResolver struct {
	Method   CoverArtMethod
	MusicDir string
	// TempPath is overwritten on every native fetch.
	TempPath string

	debug bool
}

func NewCoverArtResolver(method CoverArtMethod, musicDir string, debug bool) *CoverArtResolver {
	return &CoverArtResolver{
		Method:   method,
		MusicDir: musicDir,
		TempPath: filepath.Join(os.TempDir(), "mpd-notifyd-cover"),
		debug:    debug,
	}
}

// Resolve returns an icon path, or "" for no icon. Failures never propagate:
// a missing cover only costs the popup its image.
func (r *CoverArtResolver) Resolve(src PlayerSource, song *Song) string {
	switch r.Method {
	case CoverArtLocal:
		return r.local(song)
	case CoverArtNative:
		return r.native(src, song)
	default:
		return ""
	}
}

// local guesses <music_directory>/<song dir>/cover.jpg, then one level up
// for disc subfolders like CD1/. Files outside music_directory are not found.
func (r *CoverArtResolver) local(song *Song) string {
	if r.MusicDir == "" {
		if r.debug {
			log.Println("⚠️  local cover art needs music_directory")
		}
		return ""
	}

	dir := filepath.Dir(filepath.Join(r.MusicDir, song.FilePath))
	for _, candidate := range []string{
		filepath.Join(dir, coverFileName),
		filepath.Join(filepath.Dir(dir), coverFileName),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (r *CoverArtResolver) native(src PlayerSource, song *Song) string {
	artwork, err := src.AlbumArt(song.FilePath)
	if err != nil {
		if !errors.Is(err, ErrNoAlbumArt) {
			log.Printf("⚠️  Album art fetch failed: %v", err)
		}
		return ""
	}

	if err := os.WriteFile(r.TempPath, artwork, 0o644); err != nil {
		log.Printf("⚠️  Failed to write album art: %v", err)
		return ""
	}
	return r.TempPath
}
