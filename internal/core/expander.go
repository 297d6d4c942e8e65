package core

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Expander populates the forward queue for a resolved track: it unions
// the related artists of every credited artist on the seed, collects
// their top tracks, deduplicates by URI and enqueues a bounded count.
// Related-artist adjacency stands in for a relevance signal; results keep
// artist discovery order, not any score order.
type Expander struct {
	catalog Catalog
	cfg     QueueConfig
	newSeen func() SeenSet
	logger  *zap.Logger
}

func NewExpander(catalog Catalog, cfg QueueConfig, newSeen func() SeenSet, logger *zap.Logger) *Expander {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultQueueMaxResults
	}
	if cfg.MaxResults > MaxQueueResults {
		cfg.MaxResults = MaxQueueResults
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}

	return &Expander{
		catalog: catalog,
		cfg:     cfg,
		newSeen: newSeen,
		logger:  logger,
	}
}

// Expand builds and enqueues a recommendation set seeded by a track URI
// and an optional artist URI. Every failure inside expansion is soft: a
// missing seed, an empty artist graph or an unreachable device all yield
// a degraded set rather than an error. The seed track itself never enters
// the set.
func (e *Expander) Expand(ctx context.Context, seedTrackURI, seedArtistURI string) RecommendationSet {
	var set RecommendationSet

	seed, err := e.catalog.GetTrack(ctx, CatalogID(seedTrackURI))
	if err != nil {
		e.logger.Warn("seed track lookup failed, skipping queue expansion",
			zap.String("seedTrackURI", seedTrackURI),
			zap.Error(err))
		return set
	}

	artistIDs := e.candidateArtistIDs(ctx, seed, seedArtistURI)
	if len(artistIDs) == 0 {
		e.logger.Info("no related artists for seed, nothing to queue",
			zap.String("title", seed.Title))
		return set
	}

	seen := e.newSeen()
	seen.Add(seed.URI)

	for _, track := range e.collectTopTracks(ctx, artistIDs) {
		if len(set.Tracks) >= e.cfg.MaxResults {
			break
		}
		if track.URI == "" || seen.Has(track.URI) {
			continue
		}
		seen.Add(track.URI)
		set.Tracks = append(set.Tracks, track)
	}

	if len(set.Tracks) == 0 {
		e.logger.Info("no recommendable tracks found",
			zap.String("title", seed.Title),
			zap.Int("candidateArtists", len(artistIDs)))
		return set
	}

	// Device state may have changed since the play command; re-check
	// before touching the queue. An unreachable queue still returns the
	// computed set, distinct from "nothing to queue".
	devices, err := e.catalog.ListDevices(ctx)
	if err != nil || len(devices) == 0 {
		e.logger.Warn("no reachable device, queue not updated",
			zap.Int("computed", len(set.Tracks)),
			zap.Error(err))
		return set
	}

	deviceID := devices[0].ID
	for _, track := range set.Tracks {
		if err := e.catalog.QueueTrack(ctx, deviceID, track.URI); err != nil {
			e.logger.Warn("enqueue failed, skipping track",
				zap.String("trackURI", track.URI),
				zap.Error(err))
			continue
		}
		set.Queued++
	}

	e.logger.Info("queue expansion finished",
		zap.String("seed", seed.Title),
		zap.Int("computed", len(set.Tracks)),
		zap.Int("queued", set.Queued))

	return set
}

// candidateArtistIDs unions the related artists of every credited artist
// on the seed, in discovery order. An explicitly supplied seed artist is
// appended if the related-artist graph didn't surface it, letting callers
// bias expansion toward one artist. A failed lookup skips that artist
// only.
func (e *Expander) candidateArtistIDs(ctx context.Context, seed *Track, seedArtistURI string) []string {
	var ids []string
	seen := make(map[string]struct{})

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, credited := range seed.Artists {
		related, err := e.catalog.GetRelatedArtists(ctx, credited.ID)
		if err != nil {
			e.logger.Warn("related artists lookup failed, skipping artist",
				zap.String("artist", credited.Name),
				zap.Error(err))
			continue
		}
		for _, artist := range related {
			add(artist.ID)
		}
	}

	if seedArtistURI != "" {
		add(CatalogID(seedArtistURI))
	}

	return ids
}

// collectTopTracks fetches top tracks for every candidate artist. Lookups
// run concurrently as a pure optimization; the indexed result slice keeps
// artist discovery order in the concatenation. A failed lookup drops that
// artist's contribution only.
func (e *Expander) collectTopTracks(ctx context.Context, artistIDs []string) []Track {
	results := make([][]Track, len(artistIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.FetchConcurrency)

	for i, artistID := range artistIDs {
		g.Go(func() error {
			tracks, err := e.catalog.GetArtistTopTracks(gctx, artistID)
			if err != nil {
				e.logger.Warn("top tracks lookup failed, skipping artist",
					zap.String("artistID", artistID),
					zap.Error(err))
				return nil
			}
			results[i] = tracks
			return nil
		})
	}
	_ = g.Wait()

	var tracks []Track
	for _, r := range results {
		tracks = append(tracks, r...)
	}
	return tracks
}
