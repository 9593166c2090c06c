package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	pkgerrors "Lifeline/pkg/errors"
)

func newThreatFixture(limit int) *ThreatService {
	return NewThreatService(registry.New(), NopBroadcaster{}, limit)
}

func TestReportValidation(t *testing.T) {
	svc := newThreatFixture(10)
	ctx := context.Background()

	_, err := svc.Report(ctx, "", "p1", "", model.ThreatFire, "smoke", nil, day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.ZoneRequired)

	_, err = svc.Report(ctx, "z", "p1", "", model.ThreatCategory("tsunami"), "wave", nil, day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.ThreatCategoryInvalid)

	_, err = svc.Report(ctx, "z", "p1", "", model.ThreatFlood, "   ", nil, day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.ThreatDescriptionEmpty)
}

func TestReportAndListByZone(t *testing.T) {
	svc := newThreatFixture(10)
	ctx := context.Background()

	r, err := svc.Report(ctx, "district-4", "p1", "Ada", model.ThreatCollapse,
		"building on 5th street partially collapsed", &model.Location{Lat: 1, Lng: 2}, day(0, 9))
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, model.ThreatCollapse, r.Category)
	require.NotNil(t, r.Location)

	list := svc.ListByZone("district-4", 0)
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)
	assert.Empty(t, svc.ListByZone("district-5", 0))
}

func TestReportListCapped(t *testing.T) {
	svc := newThreatFixture(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Report(ctx, "z", "p1", "", model.ThreatOther, fmt.Sprintf("threat-%d", i), nil, day(0, 9))
		require.NoError(t, err)
	}

	list := svc.ListByZone("z", 0)
	require.Len(t, list, 3)
	assert.Equal(t, "threat-2", list[0].Description)
	assert.Equal(t, "threat-4", list[2].Description)
}
