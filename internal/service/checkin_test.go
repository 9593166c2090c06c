package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	pkgerrors "Lifeline/pkg/errors"
)

func newCheckInFixture() (*CheckInService, *registry.Registry) {
	reg := registry.New()
	return NewCheckInService(reg, NopBroadcaster{}), reg
}

func day(d int, hour int) time.Time {
	// 基准日 2026-08-01，d 为偏移天数
	return time.Date(2026, 8, 1, hour, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestFirstCheckInStartsStreakAtOne(t *testing.T) {
	svc, _ := newCheckInFixture()

	p, err := svc.ProcessCheckIn(context.Background(), CheckInInput{ID: "p1", Name: "Ada"}, day(0, 9))
	require.NoError(t, err)

	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, model.StatusOK, p.Status)
	assert.Equal(t, "2026-08-01", p.LastCheckInDay)
	require.NotNil(t, p.LastCheckInAt)
	assert.True(t, p.LastCheckInAt.Equal(day(0, 9)))
	assert.Len(t, p.History, 1)
	assert.Nil(t, p.MissingSince)
	assert.Nil(t, p.DangerZone)
}

func TestEmptyIDRejected(t *testing.T) {
	svc, _ := newCheckInFixture()

	_, err := svc.ProcessCheckIn(context.Background(), CheckInInput{ID: "  "}, day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.InvalidParticipantID)
}

func TestSameDayRecheckInIsIdempotentOnStreak(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	p, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Note: "morning"}, day(0, 8))
	require.NoError(t, err)
	require.Equal(t, 1, p.Streak)

	// 同一 UTC 日再打一次：连签不变，历史条目原位更新，长度不变
	p, err = svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Note: "evening"}, day(0, 9))
	require.NoError(t, err)

	assert.Equal(t, 1, p.Streak)
	require.Len(t, p.History, 1)
	assert.Equal(t, "evening", p.History[0].Note)
	assert.True(t, p.History[0].At.Equal(day(0, 9)))
}

func TestConsecutiveDaysIncrementStreak(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	var p model.Participant
	var err error
	for d := 0; d < 5; d++ {
		p, err = svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(d, 10))
		require.NoError(t, err)
	}

	// 从零开始连打 5 天，连签应为 5
	assert.Equal(t, 5, p.Streak)
	assert.Len(t, p.History, 5)
}

func TestGapResetsStreakToOne(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	for d := 0; d < 10; d++ {
		_, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(d, 10))
		require.NoError(t, err)
	}

	// 断 3 天后再打卡：重置为 1，不是 11 也不是 0
	p, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(13, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
}

func TestLocationOverwritesLastKnown(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	p, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Location: &model.Location{Lat: 10, Lng: 20}}, day(0, 9))
	require.NoError(t, err)
	require.NotNil(t, p.LastKnownLocation)
	assert.Equal(t, model.Location{Lat: 10, Lng: 20}, *p.LastKnownLocation)

	// 不带坐标的打卡不清掉已有位置，但当天历史快照里的坐标为空
	p, err = svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(1, 9))
	require.NoError(t, err)
	require.NotNil(t, p.LastKnownLocation)
	assert.Equal(t, model.Location{Lat: 10, Lng: 20}, *p.LastKnownLocation)
	assert.Nil(t, p.History[1].Location)
}

func TestInvalidLocationSilentlyIgnored(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	cases := []model.Location{
		{Lat: math.NaN(), Lng: 20},
		{Lat: 10, Lng: math.Inf(1)},
		{Lat: 91, Lng: 0},
		{Lat: 0, Lng: -181},
	}

	for i, loc := range cases {
		bad := loc
		p, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: fmt.Sprintf("p%d", i), Location: &bad}, day(0, 9))
		require.NoError(t, err)
		assert.Nil(t, p.LastKnownLocation)
		assert.Equal(t, model.StatusOK, p.Status)
	}
}

func TestNoteNormalization(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	p, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Note: "   "}, day(0, 9))
	require.NoError(t, err)
	assert.Empty(t, p.History[0].Note)

	long := strings.Repeat("x", 200)
	p, err = svc.ProcessCheckIn(ctx, CheckInInput{ID: "p2", Note: long}, day(0, 9))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 180), p.History[0].Note)
}

func TestHistoryCappedAt21AndUniquePerDay(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	var p model.Participant
	var err error
	for d := 0; d < 30; d++ {
		p, err = svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(d, 10))
		require.NoError(t, err)
	}

	assert.Len(t, p.History, model.MaxHistoryEntries)

	seen := make(map[string]bool)
	for _, e := range p.History {
		assert.False(t, seen[e.DayKey], "duplicate day key %s", e.DayKey)
		seen[e.DayKey] = true
	}

	// 按插入顺序裁剪，最旧的先丢：留下的应是第 9..29 天
	assert.Equal(t, "2026-08-10", p.History[0].DayKey)
	assert.Equal(t, "2026-08-30", p.History[len(p.History)-1].DayKey)
}

func TestSameDayReplacementKeepsPosition(t *testing.T) {
	svc, _ := newCheckInFixture()
	ctx := context.Background()

	for d := 0; d < 3; d++ {
		_, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(d, 10))
		require.NoError(t, err)
	}

	// 虽然有更晚的条目，本次仍是替换第 3 天的那条且位置不动
	p, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Note: "again"}, day(2, 20))
	require.NoError(t, err)

	require.Len(t, p.History, 3)
	assert.Equal(t, "2026-08-03", p.History[2].DayKey)
	assert.Equal(t, "again", p.History[2].Note)
}

func TestCheckInClearsMissingState(t *testing.T) {
	reg := registry.New()
	svc := NewCheckInService(reg, NopBroadcaster{})
	deriver := NewDeriverService(reg, NopBroadcaster{})
	ctx := context.Background()

	_, err := svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Location: &model.Location{Lat: 1, Lng: 2}}, day(0, 9))
	require.NoError(t, err)

	deriver.Sweep(day(3, 12))
	p, ok := reg.Get("p1")
	require.True(t, ok)
	require.Equal(t, model.StatusMissing, p.Status)
	require.NotNil(t, p.DangerZone)

	// 无论断签多久，一次打卡立即清掉 missing 和危险区
	p, err = svc.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(3, 13))
	require.NoError(t, err)
	assert.Equal(t, model.StatusOK, p.Status)
	assert.Equal(t, 1, p.Streak)
	assert.Nil(t, p.MissingSince)
	assert.Nil(t, p.DangerZone)
}
