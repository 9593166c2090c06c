package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
)

type captureBroadcaster struct {
	NopBroadcaster
	zoneUpdates [][]model.DangerZone
	newMissing  [][]string
}

func (c *captureBroadcaster) DangerZonesUpdated(zones []model.DangerZone, newMissing []string, _ time.Time) {
	c.zoneUpdates = append(c.zoneUpdates, zones)
	c.newMissing = append(c.newMissing, newMissing)
}

func newDeriverFixture() (*CheckInService, *DeriverService, *captureBroadcaster) {
	reg := registry.New()
	capture := &captureBroadcaster{}
	return NewCheckInService(reg, NopBroadcaster{}), NewDeriverService(reg, capture), capture
}

func TestSweepFlagsStaleParticipantMissing(t *testing.T) {
	checkin, deriver, _ := newDeriverFixture()
	ctx := context.Background()

	checkInAt := day(0, 9)
	_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Name: "Ada", Location: &model.Location{Lat: 1, Lng: 2}}, checkInAt)
	require.NoError(t, err)

	zones := deriver.ListDangerZones(day(3, 12))

	require.Len(t, zones, 1)
	dz := zones[0]
	assert.NotEmpty(t, dz.ID)
	assert.Equal(t, model.ReasonStreakBroken, dz.Reason)
	assert.Equal(t, "p1", dz.ParticipantID)
	assert.Equal(t, "Ada", dz.ParticipantName)
	require.NotNil(t, dz.Location)
	assert.Equal(t, model.Location{Lat: 1, Lng: 2}, *dz.Location)
	assert.True(t, dz.LastSeenAt.Equal(checkInAt))

	p, ok := deriver.reg.Get("p1")
	require.True(t, ok)
	assert.Equal(t, model.StatusMissing, p.Status)
	require.NotNil(t, p.MissingSince)
	assert.True(t, p.MissingSince.Equal(checkInAt))
}

func TestSweepSkipsFreshAndNeverCheckedIn(t *testing.T) {
	checkin, deriver, _ := newDeriverFixture()
	ctx := context.Background()

	// fresh: 昨天打过卡
	_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "fresh"}, day(1, 9))
	require.NoError(t, err)
	// never: 只建档从未打卡，空日键不算陈旧，unknown 不会直接进 missing
	_, err = deriver.reg.GetOrCreate("never", "")
	require.NoError(t, err)

	newMissing := deriver.Sweep(day(2, 12))

	assert.Empty(t, newMissing)
	fresh, _ := deriver.reg.Get("fresh")
	assert.Equal(t, model.StatusOK, fresh.Status)
	never, _ := deriver.reg.Get("never")
	assert.Equal(t, model.StatusUnknown, never.Status)
}

func TestMissingWithoutLocationHasNoDangerZone(t *testing.T) {
	checkin, deriver, _ := newDeriverFixture()
	ctx := context.Background()

	_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(0, 9))
	require.NoError(t, err)

	zones := deriver.ListDangerZones(day(3, 12))

	// 无位置者照样标记 missing，但不物化危险区记录
	assert.Empty(t, zones)
	p, _ := deriver.reg.Get("p1")
	assert.Equal(t, model.StatusMissing, p.Status)
	assert.Nil(t, p.DangerZone)
}

func TestSweepIsIdempotentOnMissing(t *testing.T) {
	checkin, deriver, _ := newDeriverFixture()
	ctx := context.Background()

	since := day(0, 9)
	_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Location: &model.Location{Lat: 5, Lng: 6}}, since)
	require.NoError(t, err)

	now := day(3, 12)
	first := deriver.ListDangerZones(now)
	require.Len(t, first, 1)

	second := deriver.ListDangerZones(now)
	require.Len(t, second, 1)

	// 重复巡检不重建记录：ID 不变，missingSince 不动
	assert.Equal(t, first[0].ID, second[0].ID)
	p, _ := deriver.reg.Get("p1")
	assert.True(t, p.MissingSince.Equal(since))
}

func TestFreshMissingEpisodeGetsFreshRecordID(t *testing.T) {
	reg := registry.New()
	checkin := NewCheckInService(reg, NopBroadcaster{})
	deriver := NewDeriverService(reg, NopBroadcaster{})
	ctx := context.Background()

	_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Location: &model.Location{Lat: 5, Lng: 6}}, day(0, 9))
	require.NoError(t, err)

	firstEpisode := deriver.ListDangerZones(day(3, 12))
	require.Len(t, firstEpisode, 1)

	// 打卡恢复后再次断签，是一段全新的失联史，记录 ID 必须是新的
	_, err = checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(3, 13))
	require.NoError(t, err)

	secondEpisode := deriver.ListDangerZones(day(6, 12))
	require.Len(t, secondEpisode, 1)
	assert.NotEqual(t, firstEpisode[0].ID, secondEpisode[0].ID)
}

func TestSweepBroadcastsOnlyWhenSomeoneTurnsMissing(t *testing.T) {
	checkin, deriver, capture := newDeriverFixture()
	ctx := context.Background()

	_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Location: &model.Location{Lat: 1, Lng: 2}}, day(0, 9))
	require.NoError(t, err)

	deriver.Sweep(day(3, 12))
	deriver.Sweep(day(3, 12)) // 幂等扫描不广播

	require.Len(t, capture.zoneUpdates, 1)
	assert.Equal(t, []string{"p1"}, capture.newMissing[0])
	require.Len(t, capture.zoneUpdates[0], 1)
}

func TestMissingSinceFallsBackToNow(t *testing.T) {
	_, deriver, _ := newDeriverFixture()

	// 防御路径：有日键但没有 lastCheckInAt 的记录（如镜像预热的残缺行）
	_, err := deriver.reg.Mutate("p1", "", func(p *model.Participant) {
		p.LastCheckInDay = "2026-08-01"
		p.Status = model.StatusOK
		p.LastKnownLocation = &model.Location{Lat: 3, Lng: 4}
	})
	require.NoError(t, err)

	now := day(5, 12)
	deriver.Sweep(now)

	p, _ := deriver.reg.Get("p1")
	require.Equal(t, model.StatusMissing, p.Status)
	require.NotNil(t, p.MissingSince)
	assert.True(t, p.MissingSince.Equal(now))
	require.NotNil(t, p.DangerZone)
	assert.True(t, p.DangerZone.LastSeenAt.Equal(now))
}

func TestEndToEndScenarioWithoutLocation(t *testing.T) {
	checkin, deriver, _ := newDeriverFixture()
	ctx := context.Background()

	// D 日打卡（无位置）
	p, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1"}, day(0, 9))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, model.StatusOK, p.Status)

	// D+1、D+2 缺卡，D+2 正午巡检
	deriver.Sweep(day(2, 12))
	p, _ = deriver.reg.Get("p1")
	assert.Equal(t, model.StatusMissing, p.Status)
	assert.Nil(t, p.DangerZone)

	// D+2 携带位置打卡恢复
	p, err = checkin.ProcessCheckIn(ctx, CheckInInput{ID: "p1", Location: &model.Location{Lat: 10, Lng: 20}}, day(2, 14))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, model.StatusOK, p.Status)
	assert.Nil(t, p.DangerZone)
	require.NotNil(t, p.LastKnownLocation)
	assert.Equal(t, model.Location{Lat: 10, Lng: 20}, *p.LastKnownLocation)
}

func TestListDangerZonesFollowsRegistryOrder(t *testing.T) {
	checkin, deriver, _ := newDeriverFixture()
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		_, err := checkin.ProcessCheckIn(ctx, CheckInInput{ID: id, Location: &model.Location{Lat: 1, Lng: 1}}, day(0, 9))
		require.NoError(t, err)
	}

	zones := deriver.ListDangerZones(day(4, 0))

	require.Len(t, zones, 3)
	var ids []string
	for _, z := range zones {
		ids = append(ids, z.ParticipantID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}
