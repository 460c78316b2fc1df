package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerryjj/community-votes-action/internal/models"
)

func sampleProjects() []models.Project {
	return []models.Project{
		{ID: "1", Title: "Riverbank Cleanup", Description: "Help clean up trash along the riverside park.", Location: "Riverside Park, Main Street", Type: models.TypeCleanup, Votes: 24},
		{ID: "2", Title: "Community Garden Weeding", Description: "The community garden needs help with removing invasive weeds.", Location: "Community Garden, Oak Avenue", Type: models.TypeWeeds, Votes: 18},
		{ID: "3", Title: "Playground Graffiti Removal", Description: "The children's playground has been vandalized with graffiti.", Location: "Central Park Playground", Type: models.TypeGraffiti, Votes: 32},
		{ID: "4", Title: "Park Bench Restoration", Description: "Several benches in the central park need repainting.", Location: "Central Park, East Entrance", Type: models.TypeOther, Votes: 15},
		{ID: "5", Title: "Highway Entrance Cleanup", Description: "The entrance to our community is littered with trash.", Location: "Highway 101 Entrance", Type: models.TypeCleanup, Votes: 29},
		{ID: "6", Title: "Elementary School Garden", Description: "Help maintain the garden at the local elementary school.", Location: "Lincoln Elementary School", Type: models.TypeWeeds, Votes: 22},
	}
}

func ids(projects []models.Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

func votes(projects []models.Project) []int {
	out := make([]int, len(projects))
	for i, p := range projects {
		out[i] = p.Votes
	}
	return out
}

func TestApplySortsByVotes(t *testing.T) {
	all := []models.Project{{Votes: 24}, {Votes: 18}, {Votes: 32}}

	desc := Query{Type: TypeAll, Sort: SortDesc}.Apply(all)
	assert.Equal(t, []int{32, 24, 18}, votes(desc))

	asc := Query{Type: TypeAll, Sort: SortAsc}.Apply(all)
	assert.Equal(t, []int{18, 24, 32}, votes(asc))
}

func TestApplySearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Query{Search: "GARDEN", Type: TypeAll, Sort: SortDesc}.Apply(sampleProjects())
	assert.ElementsMatch(t, []string{"2", "6"}, ids(got))

	// Matches across title, description and location.
	got = Query{Search: "central park", Type: TypeAll, Sort: SortDesc}.Apply(sampleProjects())
	assert.ElementsMatch(t, []string{"3", "4"}, ids(got))

	got = Query{Search: "no such thing", Type: TypeAll, Sort: SortDesc}.Apply(sampleProjects())
	assert.Empty(t, got)
}

func TestApplyTypeFilter(t *testing.T) {
	got := Query{Type: "weeds", Sort: SortDesc}.Apply(sampleProjects())
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, models.TypeWeeds, p.Type)
	}

	all := Query{Type: TypeAll, Sort: SortDesc}.Apply(sampleProjects())
	assert.Len(t, all, len(sampleProjects()))
}

func TestApplySearchThenFilterCompose(t *testing.T) {
	got := Query{Search: "garden", Type: "weeds", Sort: SortAsc}.Apply(sampleProjects())
	assert.Equal(t, []string{"2", "6"}, ids(got))
}

func TestApplyIsPureAndDeterministic(t *testing.T) {
	all := sampleProjects()
	q := Query{Search: "clean", Type: TypeAll, Sort: SortDesc}

	first := q.Apply(all)
	second := q.Apply(all)
	assert.Equal(t, first, second)

	// The input slice is left untouched.
	assert.Equal(t, sampleProjects(), all)
}

func TestApplyTiesKeepArrivalOrder(t *testing.T) {
	all := []models.Project{
		{ID: "a", Votes: 10},
		{ID: "b", Votes: 10},
		{ID: "c", Votes: 10},
	}
	got := Query{Type: TypeAll, Sort: SortDesc}.Apply(all)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestParseSortDefaultsToDesc(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSort("asc"))
	assert.Equal(t, SortDesc, ParseSort("desc"))
	assert.Equal(t, SortDesc, ParseSort(""))
	assert.Equal(t, SortDesc, ParseSort("bogus"))
}

func TestSortOrderToggle(t *testing.T) {
	assert.Equal(t, SortAsc, SortDesc.Toggle())
	assert.Equal(t, SortDesc, SortAsc.Toggle())
}

func TestFeaturedReturnsTopByVotes(t *testing.T) {
	got := Featured(sampleProjects(), 3)
	assert.Equal(t, []string{"3", "5", "1"}, ids(got))

	assert.Len(t, Featured(sampleProjects(), 10), 6)
	assert.Empty(t, Featured(nil, 3))
}
