package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tunepilot/pkg/text"
)

// Resolver turns a free-text play request into a single catalog track by
// arbitrating between the artist-aware and regular search strategies.
type Resolver struct {
	searcher *searcher
	parser   *text.Parser
	cfg      ResolverConfig
	logger   *zap.Logger
}

func NewResolver(catalog Catalog, sim Similarity, cfg ResolverConfig, logger *zap.Logger) *Resolver {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultSearchPageSize
	}
	if cfg.MaxTracks <= 0 {
		cfg.MaxTracks = DefaultMaxSearchTracks
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = 10 * time.Second
	}

	return &Resolver{
		searcher: &searcher{
			catalog: catalog,
			scorer:  NewScorer(sim, cfg.ArtistThreshold),
			cfg:     cfg,
			logger:  logger,
		},
		parser: text.NewParser(),
		cfg:    cfg,
		logger: logger,
	}
}

// Resolve runs the artist-aware strategy first and short-circuits once it
// clears the confidence threshold, skipping the second network round
// trip. The regular strategy is the fallback; below threshold the higher
// score wins, ties going to the regular strategy because it scanned the
// unfiltered candidate pool. Both strategies empty means ErrNoMatch.
func (r *Resolver) Resolve(ctx context.Context, query string) (SearchResult, error) {
	parsed := r.parser.ParseQuery(query)

	artistAware := r.searcher.bestMatch(ctx, searchRequest{
		text:       parsed.TrackHint,
		scoreQuery: parsed.TrackHint,
		artistHint: parsed.ArtistHint,
		strategy:   StrategyArtistAware,
	})
	if artistAware.Found() && artistAware.Score >= r.cfg.ConfidenceThreshold {
		r.logChoice("confident artist-aware match", artistAware)
		return artistAware, nil
	}

	regular := r.searcher.bestMatch(ctx, searchRequest{
		text:       parsed.Raw,
		scoreQuery: parsed.Raw,
		strategy:   StrategyRegular,
	})
	if regular.Found() && regular.Score >= r.cfg.ConfidenceThreshold {
		r.logChoice("confident regular match", regular)
		return regular, nil
	}

	if !artistAware.Found() && !regular.Found() {
		r.logger.Info("no candidate cleared minimal relevance",
			zap.String("query", query))
		return SearchResult{}, ErrNoMatch
	}

	chosen := regular
	if artistAware.Score > regular.Score {
		chosen = artistAware
	}
	r.logChoice("best available below threshold", chosen)
	return chosen, nil
}

func (r *Resolver) logChoice(reason string, result SearchResult) {
	r.logger.Info("track resolved",
		zap.String("reason", reason),
		zap.String("strategy", string(result.Strategy)),
		zap.String("title", result.Track.Title),
		zap.String("artist", result.Track.ArtistNames()),
		zap.Float64("score", result.Score))
}
