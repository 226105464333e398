// Package match scores candidate tracks against a wanted title and
// artist so callers can substitute a playable version of a track whose
// own preview is missing.
package match

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/ShHaWkK/SpootifyCLI/model"
)

// MinScore is the similarity floor below which a candidate is not
// considered the same song.
const MinScore = 0.85

// BestAlternative picks the candidate most similar to the wanted title
// and artist among those that carry a preview clip. It returns nil when
// no candidate both has a preview and clears MinScore.
func BestAlternative(candidates []model.RemoteTrack, title, artist string) *model.RemoteTrack {
	jw := metrics.NewJaroWinkler()
	var best *model.RemoteTrack
	bestScore := 0.0
	for i := range candidates {
		c := &candidates[i]
		if !c.HasPreview() {
			continue
		}
		score := Score(jw, c, title, artist)
		if score >= MinScore && score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

// Score combines title and artist similarity, weighting the title
// heavier since remixes and covers usually differ there first.
func Score(jw *metrics.JaroWinkler, c *model.RemoteTrack, title, artist string) float64 {
	titleScore := strutil.Similarity(normalize(c.Name), normalize(title), jw)
	if artist == "" {
		return titleScore
	}
	artistScore := 0.0
	for _, a := range c.Artists {
		if s := strutil.Similarity(normalize(a), normalize(artist), jw); s > artistScore {
			artistScore = s
		}
	}
	return 0.6*titleScore + 0.4*artistScore
}

// normalize lowercases and strips parenthesized qualifiers like
// "(Remastered 2011)" that otherwise drag down the title similarity.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "([-"); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
