package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.no_match":           "No valid track found for '%s'.",
	"error.no_device":          "No active Spotify device found. Please open Spotify on a device.",
	"error.play_failed":        "Couldn't start playback. Please try again.",
	"error.pause_failed":       "Error pausing playback. Please try again.",
	"error.skip_failed":        "Error skipping song. Please try again.",
	"error.playlist_not_found": "No playlist was found.",
	"error.playlist_failed":    "Error playing playlist. Please try again.",
	"error.generic":            "Something went wrong. Please try again.",

	// Success messages
	"status.now_playing":      "Now playing: %s by %s. Enjoy!",
	"status.paused":           "Playback paused successfully.",
	"status.skipped":          "Next track played.",
	"status.playlist_playing": "Playlist found! Name of playlist: %s",
}
