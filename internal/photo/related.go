package photo

import (
	"sort"
	"strings"
)

// relatedLimit caps the "more like this" section.
const relatedLimit = 3

// stopwords are common function words excluded from keyword matching.
var stopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true,
	"have": true, "been": true, "were": true, "they": true, "their": true,
}

// Keywords extracts the matching terms from a photo: lowercase words of the
// name and story, longer than three characters, not stopwords, deduplicated
// in first-seen order.
func Keywords(p Photo) []string {
	text := strings.ToLower(p.Name + " " + p.Story)
	seen := map[string]bool{}
	var keywords []string
	for _, word := range strings.Fields(text) {
		if len(word) <= 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

// Score computes the relevance of candidate to focal: one point per focal
// keyword present in the candidate's text (presence, not frequency), plus
// three when both carry the same non-empty location.
func Score(focal, candidate Photo) int {
	content := strings.ToLower(candidate.Name + " " + candidate.Story)
	score := 0
	for _, keyword := range Keywords(focal) {
		if strings.Contains(content, keyword) {
			score++
		}
	}
	if focal.location() != "" && candidate.location() == focal.location() {
		score += 3
	}
	return score
}

// Related ranks candidates by relevance to focal and returns the top three.
// Ties keep the candidates' incoming order, and zero-score candidates are
// returned rather than filtered, so any non-empty candidate list yields a
// non-empty result.
func Related(focal Photo, candidates []Photo) []Photo {
	if len(candidates) == 0 {
		return nil
	}
	type scored struct {
		photo Photo
		score int
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{photo: c, score: Score(focal, c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > relatedLimit {
		ranked = ranked[:relatedLimit]
	}
	out := make([]Photo, len(ranked))
	for i, s := range ranked {
		out[i] = s.photo
	}
	return out
}
