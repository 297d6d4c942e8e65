package core

import (
	"context"

	"go.uber.org/zap"
)

// Both strategies share one paginated scan; only the search text and the
// artist-hint flag differ, so the paging logic cannot drift between them.
type searchRequest struct {
	text       string
	scoreQuery string
	artistHint string
	strategy   Strategy
}

type searcher struct {
	catalog Catalog
	scorer  *Scorer
	cfg     ResolverConfig
	logger  *zap.Logger
}

// bestMatch pages through catalog search results, scoring every candidate
// and keeping the single best. Ties keep the first-seen candidate. A
// failed or timed-out page ends the scan with whatever was accumulated;
// zero results yield a not-found result, never an error.
func (s *searcher) bestMatch(ctx context.Context, req searchRequest) SearchResult {
	best := SearchResult{Strategy: req.strategy}

	scanned := 0
	offset := 0

	for scanned < s.cfg.MaxTracks {
		limit := s.cfg.PageSize
		if remaining := s.cfg.MaxTracks - scanned; remaining < limit {
			limit = remaining
		}

		page, err := s.fetchPage(ctx, req.text, limit, offset)
		if err != nil {
			s.logger.Warn("search page failed, ending scan",
				zap.String("strategy", string(req.strategy)),
				zap.Int("offset", offset),
				zap.Error(err))
			break
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			combined, _, ok := s.scorer.Score(req.scoreQuery, page[i], req.artistHint)
			if !ok {
				continue
			}
			if combined > best.Score {
				best.Track = page[i]
				best.Score = combined
			}
		}

		scanned += len(page)
		if len(page) < limit {
			break
		}
		offset += limit
	}

	if best.Found() {
		s.logger.Debug("strategy candidate selected",
			zap.String("strategy", string(req.strategy)),
			zap.String("title", best.Track.Title),
			zap.String("artist", best.Track.ArtistNames()),
			zap.Float64("score", best.Score),
			zap.Int("scanned", scanned))
	}

	return best
}

func (s *searcher) fetchPage(ctx context.Context, text string, limit, offset int) ([]Track, error) {
	pageCtx, cancel := context.WithTimeout(ctx, s.cfg.CatalogTimeout)
	defer cancel()

	return s.catalog.SearchTracksPage(pageCtx, text, limit, offset)
}
