package core

import (
	"context"
	"errors"
	"sync"
)

// fakeCatalog is a scriptable in-memory Catalog. All mutating bookkeeping
// is mutex-guarded because the expander fetches top tracks concurrently.
type fakeCatalog struct {
	mu sync.Mutex

	searchPages func(text string, limit, offset int) ([]Track, error)
	searchCalls []searchCall

	tracks    map[string]*Track
	related   map[string][]Artist
	topTracks map[string][]Track
	topErrs   map[string]error

	devices    []Device
	devicesErr error
	devicesFn  func(call int) ([]Device, error)
	deviceCall int

	playlists    []Playlist
	playlistsErr error

	played         []string
	playedContexts []string
	queued         []string
	queueErrs      map[string]error

	pauseErr error
	skipErr  error
}

type searchCall struct {
	text   string
	limit  int
	offset int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:    make(map[string]*Track),
		related:   make(map[string][]Artist),
		topTracks: make(map[string][]Track),
		topErrs:   make(map[string]error),
		queueErrs: make(map[string]error),
	}
}

func (f *fakeCatalog) SearchTracksPage(_ context.Context, text string, limit, offset int) ([]Track, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, searchCall{text: text, limit: limit, offset: offset})
	f.mu.Unlock()

	if f.searchPages == nil {
		return nil, nil
	}
	return f.searchPages(text, limit, offset)
}

func (f *fakeCatalog) GetTrack(_ context.Context, trackID string) (*Track, error) {
	track, ok := f.tracks[trackID]
	if !ok {
		return nil, errors.New("track not found: " + trackID)
	}
	return track, nil
}

func (f *fakeCatalog) GetRelatedArtists(_ context.Context, artistID string) ([]Artist, error) {
	return f.related[artistID], nil
}

func (f *fakeCatalog) GetArtistTopTracks(_ context.Context, artistID string) ([]Track, error) {
	if err := f.topErrs[artistID]; err != nil {
		return nil, err
	}
	return f.topTracks[artistID], nil
}

func (f *fakeCatalog) ListDevices(_ context.Context) ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.devicesFn != nil {
		f.deviceCall++
		return f.devicesFn(f.deviceCall)
	}
	return f.devices, f.devicesErr
}

func (f *fakeCatalog) StartPlayback(_ context.Context, deviceID, trackURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, trackURI)
	return nil
}

func (f *fakeCatalog) StartContextPlayback(_ context.Context, deviceID, contextURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playedContexts = append(f.playedContexts, contextURI)
	return nil
}

func (f *fakeCatalog) QueueTrack(_ context.Context, deviceID, trackURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.queueErrs[trackURI]; err != nil {
		return err
	}
	f.queued = append(f.queued, trackURI)
	return nil
}

func (f *fakeCatalog) PausePlayback(_ context.Context) error {
	return f.pauseErr
}

func (f *fakeCatalog) SkipNext(_ context.Context) error {
	return f.skipErr
}

func (f *fakeCatalog) ListUserPlaylists(_ context.Context) ([]Playlist, error) {
	return f.playlists, f.playlistsErr
}

func (f *fakeCatalog) searchTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(f.searchCalls))
	for _, call := range f.searchCalls {
		texts = append(texts, call.text)
	}
	return texts
}

// stubSim returns preset scores for string pairs, 0 for everything else.
type stubSim struct {
	scores map[[2]string]float64
}

func (s *stubSim) Score(a, b string) float64 {
	return s.scores[[2]string{a, b}]
}

// mapSeen is a plain map SeenSet for tests.
type mapSeen struct {
	mu   sync.Mutex
	uris map[string]struct{}
}

func newMapSeen() SeenSet {
	return &mapSeen{uris: make(map[string]struct{})}
}

func (m *mapSeen) Has(uri string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.uris[uri]
	return ok
}

func (m *mapSeen) Add(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uris[uri] = struct{}{}
}

func (m *mapSeen) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uris)
}

func (m *mapSeen) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uris = make(map[string]struct{})
}
