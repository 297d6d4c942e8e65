package core

import (
	"tunepilot/pkg/fuzzy"
)

// Title match is the primary signal; the artist component disambiguates
// covers and remixes without dominating when titles are unique.
const (
	titleWeight  = 0.7
	artistWeight = 0.3
)

// Scorer computes weighted fuzzy relevance between a play request and a
// catalog track.
type Scorer struct {
	sim             Similarity
	normalizer      *fuzzy.Normalizer
	artistThreshold float64
}

func NewScorer(sim Similarity, artistThreshold float64) *Scorer {
	return &Scorer{
		sim:             sim,
		normalizer:      fuzzy.NewNormalizer(),
		artistThreshold: artistThreshold,
	}
}

// Score returns the combined score for a candidate track. With an artist
// hint, the artist score is the best similarity across the full artist
// credit list; candidates below the threshold are excluded entirely, not
// penalized, so ok reports false for them.
func (s *Scorer) Score(query string, track Track, artistHint string) (combined, artistScore float64, ok bool) {
	titleScore := s.titleScore(query, track.Title)

	if artistHint == "" {
		return titleScore, 0, true
	}

	for _, artist := range track.Artists {
		if score := s.sim.Score(artistHint, artist.Name); score > artistScore {
			artistScore = score
		}
	}
	if artistScore < s.artistThreshold {
		return 0, artistScore, false
	}

	return titleWeight*titleScore + artistWeight*artistScore, artistScore, true
}

// titleScore also tries the simplified title (feat/remix decorations
// stripped) and keeps the better of the two.
func (s *Scorer) titleScore(query, title string) float64 {
	score := s.sim.Score(query, title)
	if simplified := s.normalizer.NormalizeTitle(title); simplified != "" {
		if alt := s.sim.Score(query, simplified); alt > score {
			score = alt
		}
	}
	return score
}
