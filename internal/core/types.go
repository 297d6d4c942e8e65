// Package core implements track resolution and queue expansion: parsing
// play requests, fuzzy candidate scoring, confidence-based strategy
// arbitration, playback orchestration and related-artist queue building.
package core

import (
	"context"
	"strings"
)

type Artist struct {
	ID   string
	Name string
	URI  string
}

type Track struct {
	ID          string
	Title       string
	Artists     []Artist
	URI         string
	ExternalURL string
}

// PrimaryArtist returns the first credited artist, the seed for queue
// expansion when no explicit seed is supplied.
func (t Track) PrimaryArtist() Artist {
	if len(t.Artists) == 0 {
		return Artist{}
	}
	return t.Artists[0]
}

func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

type Playlist struct {
	ID   string
	Name string
	URI  string
}

// Device describes an available playback endpoint. Device state is never
// cached; the active device can change between calls.
type Device struct {
	ID     string
	Name   string
	Active bool
}

type Strategy string

const (
	// StrategyArtistAware searches with the parsed track hint and rejects
	// candidates whose artist similarity falls below the floor.
	StrategyArtistAware Strategy = "artist_aware"
	// StrategyRegular searches with the raw query and scores titles only.
	StrategyRegular Strategy = "regular"
)

// SearchResult pairs a candidate track with its combined score (0-100)
// and the strategy that produced it.
type SearchResult struct {
	Track    Track
	Score    float64
	Strategy Strategy
}

func (r SearchResult) Found() bool {
	return r.Track.URI != ""
}

// PlaybackTarget is a resolved track handed to the orchestrator, plus an
// optional artist URI to bias queue expansion toward.
type PlaybackTarget struct {
	TrackURI      string
	SeedArtistURI string
}

type PlaybackOutcome struct {
	DeviceID string
}

// RecommendationSet is the ordered, URI-deduplicated forward queue built
// by the expander for one playback session. Queued counts the tracks
// actually pushed to the device; it is zero when no device was reachable.
type RecommendationSet struct {
	Tracks []Track
	Queued int
}

func (rs RecommendationSet) URIs() []string {
	uris := make([]string, 0, len(rs.Tracks))
	for _, t := range rs.Tracks {
		uris = append(uris, t.URI)
	}
	return uris
}

// Catalog is the remote search/playback collaborator. Implementations own
// transport and auth; every method is a blocking remote call.
type Catalog interface {
	SearchTracksPage(ctx context.Context, text string, limit, offset int) ([]Track, error)
	GetTrack(ctx context.Context, trackID string) (*Track, error)
	GetRelatedArtists(ctx context.Context, artistID string) ([]Artist, error)
	GetArtistTopTracks(ctx context.Context, artistID string) ([]Track, error)
	ListDevices(ctx context.Context) ([]Device, error)
	StartPlayback(ctx context.Context, deviceID, trackURI string) error
	StartContextPlayback(ctx context.Context, deviceID, contextURI string) error
	QueueTrack(ctx context.Context, deviceID, trackURI string) error
	PausePlayback(ctx context.Context) error
	SkipNext(ctx context.Context) error
	ListUserPlaylists(ctx context.Context) ([]Playlist, error)
}

// Similarity scores two strings on a 0-100 scale. Kept as a one-method
// interface so the matching backend can be swapped or stubbed in tests.
type Similarity interface {
	Score(a, b string) float64
}

// SeenSet tracks URIs already admitted to a recommendation set.
type SeenSet interface {
	Has(uri string) bool
	Add(uri string)
	Size() int
	Clear()
}

// CatalogID extracts the bare catalog ID from a URI like
// "spotify:track:xyz" or a share URL ending in "/xyz".
func CatalogID(uri string) string {
	if i := strings.LastIndex(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
