package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestSearcher(catalog Catalog, sim Similarity, cfg ResolverConfig) *searcher {
	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = time.Second
	}
	return &searcher{
		catalog: catalog,
		scorer:  NewScorer(sim, cfg.ArtistThreshold),
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
}

func TestBestMatchStopsAtMaxTracks(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, limit, offset int) ([]Track, error) {
		// Endless catalog: always a full page.
		page := make([]Track, limit)
		for i := range page {
			page[i] = mkTrack("spotify:track:x", "Song", "Artist", "a1")
		}
		return page, nil
	}

	s := newTestSearcher(catalog, &stubSim{}, ResolverConfig{PageSize: 2, MaxTracks: 4})
	s.bestMatch(context.Background(), searchRequest{text: "song", scoreQuery: "song", strategy: StrategyRegular})

	catalog.mu.Lock()
	calls := append([]searchCall(nil), catalog.searchCalls...)
	catalog.mu.Unlock()

	if len(calls) != 2 {
		t.Fatalf("expected 2 page fetches, got %d", len(calls))
	}
	if calls[0].offset != 0 || calls[1].offset != 2 {
		t.Errorf("page offsets = %d, %d, expected 0, 2", calls[0].offset, calls[1].offset)
	}
	if calls[0].limit != 2 || calls[1].limit != 2 {
		t.Errorf("page limits = %d, %d, expected 2, 2", calls[0].limit, calls[1].limit)
	}
}

func TestBestMatchStopsOnShortPage(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, _, _ int) ([]Track, error) {
		return []Track{mkTrack("spotify:track:t1", "Song", "Artist", "a1")}, nil
	}

	s := newTestSearcher(catalog, &stubSim{}, ResolverConfig{PageSize: 50, MaxTracks: 100})
	s.bestMatch(context.Background(), searchRequest{text: "song", scoreQuery: "song", strategy: StrategyRegular})

	if texts := catalog.searchTexts(); len(texts) != 1 {
		t.Errorf("expected 1 page fetch after short page, got %d", len(texts))
	}
}

func TestBestMatchKeepsAccumulatedOnPageError(t *testing.T) {
	pageErr := errors.New("rate limited")

	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, limit, offset int) ([]Track, error) {
		if offset > 0 {
			return nil, pageErr
		}
		page := make([]Track, limit)
		for i := range page {
			page[i] = mkTrack("spotify:track:t1", "Song", "Artist", "a1")
		}
		return page, nil
	}

	sim := &stubSim{scores: map[[2]string]float64{
		{"song", "Song"}: 75,
	}}

	s := newTestSearcher(catalog, sim, ResolverConfig{PageSize: 2, MaxTracks: 100})
	result := s.bestMatch(context.Background(), searchRequest{text: "song", scoreQuery: "song", strategy: StrategyRegular})

	if !result.Found() {
		t.Fatal("expected result accumulated before the failing page")
	}
	if result.Score != 75 {
		t.Errorf("score = %v, expected 75", result.Score)
	}
}

func TestBestMatchEmptyCatalog(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchPages = func(_ string, _, _ int) ([]Track, error) {
		return nil, nil
	}

	s := newTestSearcher(catalog, &stubSim{}, ResolverConfig{PageSize: 50, MaxTracks: 100})
	result := s.bestMatch(context.Background(), searchRequest{text: "song", scoreQuery: "song", strategy: StrategyRegular})

	if result.Found() {
		t.Errorf("expected not-found result, got %+v", result)
	}
}
