package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Error messages
	"error.no_match":           "Ha keis passends Lied für '%s' gfunde.",
	"error.no_device":          "Ha keis aktivs Spotify-Grät gfunde. Bitte mach Spotify uf emne Grät uf.",
	"error.play_failed":        "Ha d Widergab nid chönne starte. Probier's haut nomau, bitte.",
	"error.pause_failed":       "Ha d Widergab nid chönne pausiere. Probier's haut nomau, bitte.",
	"error.skip_failed":        "Ha's Lied nid chönne überspringe. Probier's haut nomau, bitte.",
	"error.playlist_not_found": "Ha kei Playliste gfunde.",
	"error.playlist_failed":    "Ha d Playliste nid chönne abspile. Probier's haut nomau, bitte.",
	"error.generic":            "Öppis isch schief gloffe. Probier's haut nomau, bitte.",

	// Success messages
	"status.now_playing":      "Jetz louft: %s vo %s. Viu Spass!",
	"status.paused":           "D Widergab isch pausiert.",
	"status.skipped":          "S nächste Lied louft.",
	"status.playlist_playing": "Playliste gfunde! Si heisst: %s",
}
