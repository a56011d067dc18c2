package entry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/eventpass/internal/entry"
	"github.com/daap14/eventpass/internal/registration"
	"github.com/daap14/eventpass/internal/testutil"
)

func intPtr(i int) *int { return &i }

func seeded(t *testing.T) (*entry.Service, *testutil.MemoryRepository) {
	t.Helper()
	repo := testutil.NewMemoryRepository()
	repo.Seed(testutil.Team("PASS-abc123XYZ0", "Rockets", "MIT", false, false, false))
	return entry.NewService(repo), repo
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var inputErr *registration.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, code, inputErr.Code)
}

func TestSearch_ByPassIDAndEmail(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)
	ctx := context.Background()

	reg, err := svc.Search(ctx, "  PASS-abc123XYZ0 ")
	require.NoError(t, err)
	assert.Equal(t, "Rockets", reg.TeamName)

	reg, err = svc.Search(ctx, "PASS-ABC123XYZ0@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "PASS-abc123XYZ0", reg.PassID)
	assert.Len(t, reg.TeamMembers, 2)
}

func TestSearch_Errors(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)

	_, err := svc.Search(context.Background(), "   ")
	requireCode(t, err, "MISSING_QUERY")

	_, err = svc.Search(context.Background(), "PASS-missing")
	assert.ErrorIs(t, err, registration.ErrNotFound)
}

func TestMarkAndUndo_RoundTrip(t *testing.T) {
	t.Parallel()
	svc, repo := seeded(t)
	ctx := context.Background()

	out, err := svc.Mark(ctx, "PASS-abc123XYZ0", "member", intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, "Team member marked as entered", out.Message)

	reg, err := repo.GetByPassID(ctx, "PASS-abc123XYZ0")
	require.NoError(t, err)
	assert.False(t, reg.Entered)
	assert.False(t, reg.TeamMembers[0].Entered)
	assert.True(t, reg.TeamMembers[1].Entered)

	out, err = svc.Undo(ctx, "PASS-abc123XYZ0", "member", intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, "Team member entry undone", out.Message)

	reg, err = repo.GetByPassID(ctx, "PASS-abc123XYZ0")
	require.NoError(t, err)
	assert.Zero(t, reg.EnteredCount())

	out, err = svc.Mark(ctx, "PASS-abc123XYZ0", "lead", nil)
	require.NoError(t, err)
	assert.Equal(t, "Team lead marked as entered", out.Message)

	out, err = svc.Undo(ctx, "PASS-abc123XYZ0", "lead", nil)
	require.NoError(t, err)
	assert.Equal(t, "Team lead entry undone", out.Message)
}

func TestMark_InvalidParams(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "", "lead", nil)
	requireCode(t, err, "MISSING_PASS_ID")

	_, err = svc.Mark(ctx, "PASS-abc123XYZ0", "member", nil)
	requireCode(t, err, "INVALID_PARAMS")

	_, err = svc.Mark(ctx, "PASS-abc123XYZ0", "member", intPtr(-1))
	requireCode(t, err, "INVALID_PARAMS")

	_, err = svc.Mark(ctx, "PASS-abc123XYZ0", "guest", nil)
	requireCode(t, err, "INVALID_PARAMS")
}

func TestMark_NotFoundAndOutOfRange(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "PASS-none", "lead", nil)
	assert.ErrorIs(t, err, registration.ErrNotFound)

	_, err = svc.Mark(ctx, "PASS-abc123XYZ0", "member", intPtr(5))
	assert.ErrorIs(t, err, registration.ErrMemberIndexOutOfRange)
}

func TestBulkMark(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)
	ctx := context.Background()

	out, err := svc.BulkMark(ctx, "PASS-abc123XYZ0", []entry.Selection{
		{Type: "lead"},
		{Type: "member", MemberIndex: intPtr(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 person(s) marked as entered", out.Message)
	assert.Equal(t, 2, out.Affected)

	reg, err := svc.Search(ctx, "PASS-abc123XYZ0")
	require.NoError(t, err)
	assert.True(t, reg.Entered)
	assert.True(t, reg.TeamMembers[0].Entered)
	assert.False(t, reg.TeamMembers[1].Entered)
}

func TestBulkMark_SkipsInvalidSelections(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)
	ctx := context.Background()

	out, err := svc.BulkMark(ctx, "PASS-abc123XYZ0", []entry.Selection{
		{Type: "member", MemberIndex: intPtr(1)},
		{Type: "member"},
		{Type: "visitor"},
	})
	require.NoError(t, err)
	assert.Equal(t, "3 person(s) marked as entered", out.Message)
	assert.Equal(t, 1, out.Affected)
}

func TestBulkMark_InvalidParams(t *testing.T) {
	t.Parallel()
	svc, _ := seeded(t)
	ctx := context.Background()

	_, err := svc.BulkMark(ctx, "", []entry.Selection{{Type: "lead"}})
	requireCode(t, err, "INVALID_PARAMS")

	_, err = svc.BulkMark(ctx, "PASS-abc123XYZ0", nil)
	requireCode(t, err, "INVALID_PARAMS")

	_, err = svc.BulkMark(ctx, "PASS-abc123XYZ0", []entry.Selection{{Type: "member"}})
	requireCode(t, err, "INVALID_PARAMS")
}
