package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	pkgerrors "Lifeline/pkg/errors"
)

func newSOSFixture() *SOSService {
	return NewSOSService(registry.New(), NopBroadcaster{})
}

func TestRaiseAndResolve(t *testing.T) {
	svc := newSOSFixture()
	ctx := context.Background()

	alert, err := svc.Raise(ctx, "p1", "Ada", &model.Location{Lat: 10, Lng: 20}, "trapped in basement", day(0, 9))
	require.NoError(t, err)
	assert.True(t, alert.Active)
	require.NotNil(t, alert.Location)

	active := svc.Active()
	require.Len(t, active, 1)
	assert.Equal(t, alert.ID, active[0].ID)

	resolved, err := svc.Resolve(ctx, alert.ID, day(0, 12))
	require.NoError(t, err)
	assert.False(t, resolved.Active)
	require.NotNil(t, resolved.ResolvedAt)

	assert.Empty(t, svc.Active())

	// 重复解除幂等
	again, err := svc.Resolve(ctx, alert.ID, day(0, 13))
	require.NoError(t, err)
	assert.True(t, again.ResolvedAt.Equal(day(0, 12)))
}

func TestResolveUnknownAlert(t *testing.T) {
	svc := newSOSFixture()

	_, err := svc.Resolve(context.Background(), "nope", day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.SOSNotFound)
}

func TestRaiseDropsInvalidLocation(t *testing.T) {
	svc := newSOSFixture()

	alert, err := svc.Raise(context.Background(), "p1", "", &model.Location{Lat: math.NaN(), Lng: 0}, "", day(0, 9))
	require.NoError(t, err)
	assert.Nil(t, alert.Location)
}

func TestActiveSortsNewestFirst(t *testing.T) {
	svc := newSOSFixture()
	ctx := context.Background()

	first, err := svc.Raise(ctx, "p1", "", nil, "", day(0, 9))
	require.NoError(t, err)
	second, err := svc.Raise(ctx, "p2", "", nil, "", day(0, 11))
	require.NoError(t, err)

	active := svc.Active()
	require.Len(t, active, 2)
	assert.Equal(t, second.ID, active[0].ID)
	assert.Equal(t, first.ID, active[1].ID)
}
