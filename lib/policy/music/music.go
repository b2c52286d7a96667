// Package music validates the music-specific event kinds the relay
// accepts: tracks, releases, and playlists all carry a title tag and,
// being addressable, a d tag.
package music

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"
)

const (
	// KindTrack is an addressable music track event.
	KindTrack = 31683
	// KindRelease is an addressable release (album or EP) event.
	KindRelease = 33123
	// KindPlaylist is an addressable playlist event.
	KindPlaylist = 30119
)

// IsMusicKind reports whether the kind carries music policy
// requirements.
func IsMusicKind(kind int) bool {
	switch kind {
	case KindTrack, KindRelease, KindPlaylist:
		return true
	}
	return false
}

// ValidateMusicEvent checks the tag requirements for music kinds. It
// returns nil for non-music kinds.
func ValidateMusicEvent(event *nostr.Event) error {
	if !IsMusicKind(event.Kind) {
		return nil
	}
	if tag := event.Tags.GetFirst([]string{"title"}); tag == nil || len(*tag) < 2 || (*tag)[1] == "" {
		return fmt.Errorf("missing title tag")
	}
	if tag := event.Tags.GetFirst([]string{"d"}); tag == nil || len(*tag) < 2 || (*tag)[1] == "" {
		return fmt.Errorf("missing d tag")
	}
	return nil
}
