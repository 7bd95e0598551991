package photo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestKeywordsFiltersShortAndStopwords(t *testing.T) {
	p := Photo{Name: "Misty Lake Sunrise", Story: "calm water with this fog"}
	got := Keywords(p)
	assert.Equal(t, []string{"misty", "lake", "sunrise", "calm", "water"}, got)
}

func TestScoreKeywordOverlapAndLocationBonus(t *testing.T) {
	focal := Photo{
		Name:     "Misty Lake Sunrise",
		Story:    "calm water reflecting golden light",
		Location: strPtr("Alps"),
	}
	match := Photo{Name: "Foggy Lake", Story: "morning calm over water", Location: strPtr("Alps")}
	miss := Photo{Name: "Desert Dunes", Story: "dry heat and sand"}

	// "lake", "calm" and "water" overlap, plus the location bonus.
	assert.Equal(t, 6, Score(focal, match))
	assert.Equal(t, 0, Score(focal, miss))
}

func TestScoreIsPresencePerKeywordNotFrequency(t *testing.T) {
	focal := Photo{Name: "Water", Story: "water water water"}
	candidate := Photo{Name: "Waterfall", Story: "water everywhere water"}
	// One focal keyword ("water"), present once as a presence test.
	assert.Equal(t, 1, Score(focal, candidate))
}

func TestScoreMissingStoryTreatedAsEmpty(t *testing.T) {
	focal := Photo{Name: "Lake"}
	candidate := Photo{Name: "Lakeshore"}
	assert.Equal(t, 1, Score(focal, candidate))
}

func TestScoreNoBonusWhenLocationsEmpty(t *testing.T) {
	focal := Photo{Name: "Dunes", Story: ""}
	candidate := Photo{Name: "Dunes at dusk"}
	assert.Equal(t, 1, Score(focal, candidate))
}

func TestRelatedRanksByKeywordAndLocation(t *testing.T) {
	focal := Photo{
		ID:       1,
		Name:     "Misty Lake Sunrise",
		Story:    "calm water reflecting golden light",
		Location: strPtr("Alps"),
	}
	candidates := []Photo{
		{ID: 3, Name: "Desert Dunes", Story: "dry heat and sand", Location: strPtr("")},
		{ID: 2, Name: "Foggy Lake", Story: "morning calm over water", Location: strPtr("Alps")},
	}

	got := Related(focal, candidates)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestRelatedReturnsAtMostThree(t *testing.T) {
	focal := Photo{ID: 1, Name: "Lake", Story: "water"}
	candidates := []Photo{
		{ID: 2, Name: "Lake one", Story: "water"},
		{ID: 3, Name: "Lake two", Story: "water"},
		{ID: 4, Name: "Lake three", Story: "water"},
		{ID: 5, Name: "Lake four", Story: "water"},
	}
	got := Related(focal, candidates)
	require.Len(t, got, 3)
	for _, p := range got {
		assert.Contains(t, []int64{2, 3, 4, 5}, p.ID)
	}
}

func TestRelatedTiesKeepInputOrder(t *testing.T) {
	focal := Photo{ID: 1, Name: "Abstract shapes", Story: "colour and form"}
	candidates := []Photo{
		{ID: 10, Name: "Untitled"},
		{ID: 11, Name: "Untitled"},
		{ID: 12, Name: "Untitled"},
	}
	got := Related(focal, candidates)
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, int64(11), got[1].ID)
	assert.Equal(t, int64(12), got[2].ID)
}

func TestRelatedKeepsZeroScoreCandidates(t *testing.T) {
	focal := Photo{ID: 1, Name: "Lake", Story: "water"}
	candidates := []Photo{{ID: 2, Name: "Dunes", Story: "sand"}}
	got := Related(focal, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestRelatedEmptyCandidates(t *testing.T) {
	assert.Empty(t, Related(Photo{ID: 1, Name: "Lake"}, nil))
}

func TestRelatedIsDeterministic(t *testing.T) {
	focal := Photo{ID: 1, Name: "Misty Lake", Story: "calm water"}
	candidates := []Photo{
		{ID: 2, Name: "Foggy Lake", Story: "calm morning"},
		{ID: 3, Name: "Lake shore", Story: "water and stone"},
		{ID: 4, Name: "City night", Story: "neon"},
	}
	first := Related(focal, candidates)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Related(focal, candidates))
	}
}
