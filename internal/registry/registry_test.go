package registry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lifeline/internal/model"
	pkgerrors "Lifeline/pkg/errors"
)

func TestGetOrCreateLazyCreation(t *testing.T) {
	r := New()

	p, err := r.GetOrCreate("p1", "Ada")
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, model.StatusUnknown, p.Status)
	assert.Zero(t, p.Streak)
	assert.Empty(t, p.History)
	assert.Nil(t, p.LastKnownLocation)
	assert.Equal(t, 1, r.Len())
}

func TestGetOrCreateIsIdempotentOnIdentity(t *testing.T) {
	r := New()

	_, err := r.GetOrCreate("p1", "Ada")
	require.NoError(t, err)
	_, err = r.GetOrCreate("  p1  ", "")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Len())
}

func TestGetOrCreateRejectsBlankID(t *testing.T) {
	r := New()

	_, err := r.GetOrCreate("   ", "Ada")
	assert.ErrorIs(t, err, pkgerrors.InvalidParticipantID)
	assert.Zero(t, r.Len())
}

func TestNameUpdateDoesNotTouchStreakOrStatus(t *testing.T) {
	r := New()

	_, err := r.Mutate("p1", "Ada", func(p *model.Participant) {
		p.Streak = 7
		p.Status = model.StatusOK
	})
	require.NoError(t, err)

	p, err := r.GetOrCreate("p1", "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, 7, p.Streak)
	assert.Equal(t, model.StatusOK, p.Status)
}

func TestNameTruncatedTo60Runes(t *testing.T) {
	r := New()

	long := strings.Repeat("很", 80)
	p, err := r.GetOrCreate("p1", long)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("很", 60), p.Name)
}

func TestEmptyNameKeepsExisting(t *testing.T) {
	r := New()

	_, err := r.GetOrCreate("p1", "Ada")
	require.NoError(t, err)
	p, err := r.GetOrCreate("p1", "   ")
	require.NoError(t, err)

	assert.Equal(t, "Ada", p.Name)
}

func TestRangeVisitsEveryoneOnceInInsertionOrder(t *testing.T) {
	r := New()

	for _, id := range []string{"c", "a", "b"} {
		_, err := r.GetOrCreate(id, "")
		require.NoError(t, err)
	}

	var visited []string
	r.Range(func(p *model.Participant) {
		visited = append(visited, p.ID)
	})

	assert.Equal(t, []string{"c", "a", "b"}, visited)
}

func TestClonesAreIsolatedFromLiveState(t *testing.T) {
	r := New()

	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	_, err := r.Mutate("p1", "", func(p *model.Participant) {
		p.History = append(p.History, model.CheckInEntry{DayKey: "2026-08-26", At: now})
		p.LastKnownLocation = &model.Location{Lat: 1, Lng: 2}
	})
	require.NoError(t, err)

	got, ok := r.Get("p1")
	require.True(t, ok)

	// 改副本不应影响注册表内的活体记录
	got.History[0].DayKey = "mutated"
	got.LastKnownLocation.Lat = 99

	again, ok := r.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "2026-08-26", again.History[0].DayKey)
	assert.Equal(t, 1.0, again.LastKnownLocation.Lat)
}

func TestSeedSkipsExistingAndBlankIDs(t *testing.T) {
	r := New()

	_, err := r.Mutate("p1", "Live", func(p *model.Participant) { p.Streak = 3 })
	require.NoError(t, err)

	seeded := r.Seed([]model.Participant{
		{ID: "p1", Name: "Stale", Streak: 99},
		{ID: "p2", Name: "Restored", Streak: 5, Status: model.StatusOK},
		{ID: "   "},
	})

	assert.Equal(t, 1, seeded)
	assert.Equal(t, 2, r.Len())

	p1, _ := r.Get("p1")
	assert.Equal(t, 3, p1.Streak) // 活体记录不被覆盖

	p2, _ := r.Get("p2")
	assert.Equal(t, 5, p2.Streak)
}
