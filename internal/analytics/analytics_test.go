package analytics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/eventpass/internal/analytics"
	"github.com/daap14/eventpass/internal/registration"
	"github.com/daap14/eventpass/internal/testutil"
)

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	r := analytics.Summarize(nil)
	assert.Zero(t, r.TotalTeams)
	assert.Zero(t, r.TotalCandidates)
	assert.Zero(t, r.EntryPercentage)
	assert.Empty(t, r.CollegeBreakdown)
	assert.Empty(t, r.Teams)
	assert.NotNil(t, r.Teams)
}

func TestSummarize_Buckets(t *testing.T) {
	t.Parallel()

	regs := []registration.Registration{
		testutil.Team("PASS-A", "Alpha", "MIT", false, false),
		testutil.Team("PASS-B", "Bravo", "MIT", true, true),
		testutil.Team("PASS-C", "Charlie", "IIT", true, true),
	}

	r := analytics.Summarize(regs)

	assert.Equal(t, 3, r.TotalTeams)
	assert.Equal(t, 6, r.TotalCandidates)
	assert.Equal(t, 4, r.TotalEntered)
	assert.Equal(t, 2, r.TotalPending)
	assert.Equal(t, 67, r.EntryPercentage)
	assert.Equal(t, 1, r.TeamsNotEntered)
	assert.Equal(t, 0, r.TeamsPartiallyEntered)
	assert.Equal(t, 2, r.TeamsFullyEntered)

	require.Len(t, r.CollegeBreakdown, 2)
	assert.Equal(t, "MIT", r.CollegeBreakdown[0].College)
	assert.Equal(t, 4, r.CollegeBreakdown[0].TotalCandidates)
	assert.Equal(t, 2, r.CollegeBreakdown[0].EnteredCandidates)
	assert.Equal(t, 2, r.CollegeBreakdown[0].TotalTeams)
	assert.Equal(t, "IIT", r.CollegeBreakdown[1].College)

	require.Len(t, r.Teams, 3)
	assert.Equal(t, "Alpha", r.Teams[0].TeamName)
	assert.Equal(t, "Bravo", r.Teams[1].TeamName)
	assert.Equal(t, "Charlie", r.Teams[2].TeamName)
}

func TestSummarize_PartialFirstAndUnknownCollege(t *testing.T) {
	t.Parallel()

	regs := []registration.Registration{
		testutil.Team("PASS-A", "Full", "X", true),
		testutil.Team("PASS-B", "None", "", false, false),
		testutil.Team("PASS-C", "Half", "X", true, false),
	}

	r := analytics.Summarize(regs)

	require.Len(t, r.Teams, 3)
	assert.Equal(t, "Half", r.Teams[0].TeamName)
	assert.Equal(t, "None", r.Teams[1].TeamName)
	assert.Equal(t, "Full", r.Teams[2].TeamName)

	assert.Equal(t, "Half Lead", r.Teams[0].LeadName)
	assert.True(t, r.Teams[0].LeadEntered)
	require.Len(t, r.Teams[0].Members, 1)
	assert.False(t, r.Teams[0].Members[0].Entered)

	var unknown *analytics.CollegeRow
	for i := range r.CollegeBreakdown {
		if r.CollegeBreakdown[i].College == analytics.UnknownCollege {
			unknown = &r.CollegeBreakdown[i]
		}
	}
	require.NotNil(t, unknown)
	assert.Equal(t, 2, unknown.TotalCandidates)
	assert.Equal(t, "", r.Teams[1].College)
}

type failingRepo struct {
	*testutil.MemoryRepository
}

func (failingRepo) List(context.Context) ([]registration.Registration, error) {
	return nil, errors.New("connection reset")
}

func TestService_Report(t *testing.T) {
	t.Parallel()

	repo := testutil.NewMemoryRepository()
	repo.Seed(testutil.Team("PASS-A", "Alpha", "MIT", true, false))

	r, err := analytics.NewService(repo).Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalTeams)
	assert.Equal(t, 50, r.EntryPercentage)

	_, err = analytics.NewService(failingRepo{testutil.NewMemoryRepository()}).Report(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}
