package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

func testResolverConfig() ResolverConfig {
	return ResolverConfig{
		ArtistThreshold:     DefaultArtistThreshold,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		PageSize:            DefaultSearchPageSize,
		MaxTracks:           DefaultMaxSearchTracks,
	}
}

func mkTrack(uri, title, artistName, artistID string) Track {
	return Track{
		ID:    CatalogID(uri),
		Title: title,
		Artists: []Artist{
			{ID: artistID, Name: artistName, URI: "spotify:artist:" + artistID},
		},
		URI: uri,
	}
}

func TestResolveShortCircuitsOnConfidentArtistAwareMatch(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, _, _ int) ([]Track, error) {
		return []Track{mkTrack("spotify:track:t1", "Song A", "Artist X", "a1")}, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song a", "Song A"}:     95,
		{"artist x", "Artist X"}: 100,
	}}

	resolver := NewResolver(catalog, sim, testResolverConfig(), zap.NewNop())

	result, err := resolver.Resolve(context.Background(), "song a by artist x")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if result.Strategy != StrategyArtistAware {
		t.Errorf("Resolve() strategy = %q, expected %q", result.Strategy, StrategyArtistAware)
	}
	if result.Track.URI != "spotify:track:t1" {
		t.Errorf("Resolve() track = %q, expected %q", result.Track.URI, "spotify:track:t1")
	}

	want := 0.7*95 + 0.3*100
	if math.Abs(result.Score-want) > 1e-9 {
		t.Errorf("Resolve() score = %v, expected %v", result.Score, want)
	}

	// The fallback strategy must not hit the catalog once confidence is
	// reached.
	texts := catalog.searchTexts()
	if len(texts) != 1 {
		t.Fatalf("expected 1 search call, got %d: %v", len(texts), texts)
	}
	if texts[0] != "song a" {
		t.Errorf("artist-aware search text = %q, expected %q", texts[0], "song a")
	}
}

func TestResolveFallsBackToRegularStrategy(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(text string, _, _ int) ([]Track, error) {
		if text == "song a" {
			return []Track{mkTrack("spotify:track:t1", "Song A", "Artist X", "a1")}, nil
		}
		return []Track{mkTrack("spotify:track:t2", "Song B", "Artist Y", "a2")}, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song a", "Song A"}:             80,
		{"artist x", "Artist X"}:         100,
		{"song a by artist x", "Song B"}: 90,
	}}

	resolver := NewResolver(catalog, sim, testResolverConfig(), zap.NewNop())

	result, err := resolver.Resolve(context.Background(), "song a by artist x")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Artist-aware scored 0.7*80+0.3*100 = 86, regular scored 90.
	if result.Strategy != StrategyRegular {
		t.Errorf("Resolve() strategy = %q, expected %q", result.Strategy, StrategyRegular)
	}
	if result.Track.URI != "spotify:track:t2" {
		t.Errorf("Resolve() track = %q, expected %q", result.Track.URI, "spotify:track:t2")
	}
}

func TestResolveTieGoesToRegularStrategy(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(text string, _, _ int) ([]Track, error) {
		if text == "song a" {
			return []Track{mkTrack("spotify:track:t1", "Song A", "Artist X", "a1")}, nil
		}
		return []Track{mkTrack("spotify:track:t2", "Song B", "Artist Y", "a2")}, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song a", "Song A"}:             80,
		{"artist x", "Artist X"}:         80,
		{"song a by artist x", "Song B"}: 80,
	}}

	resolver := NewResolver(catalog, sim, testResolverConfig(), zap.NewNop())

	result, err := resolver.Resolve(context.Background(), "song a by artist x")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if result.Strategy != StrategyRegular {
		t.Errorf("Resolve() tie strategy = %q, expected %q", result.Strategy, StrategyRegular)
	}
}

func TestResolvePrefersHigherScoreBelowThreshold(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(text string, _, _ int) ([]Track, error) {
		if text == "song a" {
			return []Track{mkTrack("spotify:track:t1", "Song A", "Artist X", "a1")}, nil
		}
		return []Track{mkTrack("spotify:track:t2", "Song B", "Artist Y", "a2")}, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song a", "Song A"}:             90,
		{"artist x", "Artist X"}:         90,
		{"song a by artist x", "Song B"}: 50,
	}}

	resolver := NewResolver(catalog, sim, testResolverConfig(), zap.NewNop())

	result, err := resolver.Resolve(context.Background(), "song a by artist x")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if result.Strategy != StrategyArtistAware {
		t.Errorf("Resolve() strategy = %q, expected %q", result.Strategy, StrategyArtistAware)
	}
	if result.Track.URI != "spotify:track:t1" {
		t.Errorf("Resolve() track = %q, expected %q", result.Track.URI, "spotify:track:t1")
	}
}

func TestResolveNoMatch(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, _, _ int) ([]Track, error) {
		return nil, nil
	}

	resolver := NewResolver(catalog, &stubSim{}, testResolverConfig(), zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "complete nonsense")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("Resolve() error = %v, expected ErrNoMatch", err)
	}
}

func TestResolveRejectsArtistBelowThreshold(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(text string, _, _ int) ([]Track, error) {
		if text == "song a" {
			return []Track{mkTrack("spotify:track:t1", "Song A", "Wrong Artist", "a1")}, nil
		}
		return []Track{mkTrack("spotify:track:t2", "Song B", "Artist Y", "a2")}, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song a", "Song A"}:             100,
		{"artist x", "Wrong Artist"}:     30,
		{"song a by artist x", "Song B"}: 50,
	}}

	resolver := NewResolver(catalog, sim, testResolverConfig(), zap.NewNop())

	result, err := resolver.Resolve(context.Background(), "song a by artist x")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// The artist-aware candidate is excluded outright, not down-weighted.
	if result.Strategy != StrategyRegular {
		t.Errorf("Resolve() strategy = %q, expected %q", result.Strategy, StrategyRegular)
	}
	if result.Track.URI != "spotify:track:t2" {
		t.Errorf("Resolve() track = %q, expected %q", result.Track.URI, "spotify:track:t2")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, _, _ int) ([]Track, error) {
		return []Track{
			mkTrack("spotify:track:t1", "Song A", "Artist X", "a1"),
			mkTrack("spotify:track:t2", "Song A", "Artist X", "a2"),
		}, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song a", "Song A"}:     95,
		{"artist x", "Artist X"}: 100,
	}}

	resolver := NewResolver(catalog, sim, testResolverConfig(), zap.NewNop())

	first, err := resolver.Resolve(context.Background(), "song a by artist x")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := resolver.Resolve(context.Background(), "song a by artist x")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if again.Track.URI != first.Track.URI {
			t.Fatalf("Resolve() not deterministic: %q vs %q", again.Track.URI, first.Track.URI)
		}
	}

	// Equal-scored candidates keep the first seen.
	if first.Track.URI != "spotify:track:t1" {
		t.Errorf("Resolve() track = %q, expected first-seen %q", first.Track.URI, "spotify:track:t1")
	}
}
