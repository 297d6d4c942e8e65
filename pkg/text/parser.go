// Package text provides free-text play-request parsing.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// bySeparator splits "track by artist" requests. Only this separator is
// recognized, and only its first occurrence; artists whose own name
// contains "by" are not handled.
const bySeparator = " by "

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Query is a parsed play request: a track-name hint and an optional
// artist hint.
type Query struct {
	Raw        string
	TrackHint  string
	ArtistHint string
}

func (q Query) HasArtistHint() bool {
	return q.ArtistHint != ""
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseQuery splits a request on the first " by " of its lowercase form.
// Without the separator the whole query becomes the track hint.
func (p *Parser) ParseQuery(raw string) Query {
	cleaned := p.normalizeText(raw)
	lower := strings.ToLower(cleaned)

	q := Query{Raw: cleaned, TrackHint: lower}

	if idx := strings.Index(lower, bySeparator); idx >= 0 {
		track := strings.TrimSpace(lower[:idx])
		artist := strings.TrimSpace(lower[idx+len(bySeparator):])
		if track != "" && artist != "" {
			q.TrackHint = track
			q.ArtistHint = artist
		}
	}

	return q
}

func (p *Parser) normalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return text
}
