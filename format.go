package main

import (
	"strings"

	"github.com/samber/lo"
)

const (
	DefaultFormat = "%Artist - %Title"

	unknownArtist = "<UNKNOWN ARTIST>"
	unknownAlbum  = "<UNKNOWN ALBUM>"
	unknownTitle  = "<UNKNOWN TITLE>"
	unknownDate   = "<UNKNOWN DATE>"

	variousArtists = "Various Artists"
)

// ResolveDisplayArtist prefers AlbumArtist over Artist, except on
// compilations where AlbumArtist is "Various Artists".
func ResolveDisplayArtist(song *Song) string {
	artist, hasArtist := song.Tags["Artist"]
	albumArtist, hasAlbumArtist := song.Tags["AlbumArtist"]

	switch {
	case !hasArtist && !hasAlbumArtist:
		return unknownArtist
	case !hasArtist:
		return albumArtist
	case !hasAlbumArtist:
		return artist
	case albumArtist == variousArtists:
		return artist
	default:
		return albumArtist
	}
}

// FormatBody expands a notification template. Placeholders are substituted in
// a single pass so values containing "%Title" etc. are left as-is.
func FormatBody(template string, song *Song) string {
	r := strings.NewReplacer(
		`\n`, "\n",
		"%Artist", ResolveDisplayArtist(song),
		"%Album", lo.ValueOr(song.Tags, "Album", unknownAlbum),
		"%Title", lo.FromPtrOr(song.Title, unknownTitle),
		"%Date", lo.ValueOr(song.Tags, "Date", unknownDate),
	)
	return r.Replace(template)
}
