package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	pkgerrors "Lifeline/pkg/errors"
)

func newChatFixture(limit int) (*ChatService, *registry.Registry) {
	reg := registry.New()
	return NewChatService(reg, NopBroadcaster{}, limit), reg
}

func TestPostValidation(t *testing.T) {
	svc, _ := newChatFixture(10)
	ctx := context.Background()

	_, err := svc.Post(ctx, "  ", "p1", "", "hello", day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.ZoneRequired)

	_, err = svc.Post(ctx, "shelter-7", "p1", "", "   ", day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.MessageEmpty)

	_, err = svc.Post(ctx, "shelter-7", "   ", "", "hello", day(0, 9))
	assert.ErrorIs(t, err, pkgerrors.InvalidParticipantID)
}

func TestPostCreatesParticipantOnFirstContact(t *testing.T) {
	svc, reg := newChatFixture(10)

	msg, err := svc.Post(context.Background(), "shelter-7", "p1", "Ada", "anyone near gate B?", day(0, 9))
	require.NoError(t, err)

	assert.Equal(t, "shelter-7", msg.Zone)
	assert.Equal(t, "Ada", msg.ParticipantName)
	assert.NotEmpty(t, msg.ID)

	// 发言建档，但不算打卡
	p, ok := reg.Get("p1")
	require.True(t, ok)
	assert.Equal(t, model.StatusUnknown, p.Status)
	assert.Zero(t, p.Streak)
}

func TestPostTruncatesLongBody(t *testing.T) {
	svc, _ := newChatFixture(10)

	msg, err := svc.Post(context.Background(), "z", "p1", "", strings.Repeat("a", 600), day(0, 9))
	require.NoError(t, err)
	assert.Len(t, msg.Body, model.MaxChatBodyLength)
}

func TestHistoryRingIsCapped(t *testing.T) {
	svc, _ := newChatFixture(5)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.Post(ctx, "z", "p1", "", fmt.Sprintf("msg-%d", i), day(0, 9))
		require.NoError(t, err)
	}

	history := svc.History("z", 0)
	require.Len(t, history, 5)
	assert.Equal(t, "msg-3", history[0].Body)
	assert.Equal(t, "msg-7", history[4].Body)

	tail := svc.History("z", 2)
	require.Len(t, tail, 2)
	assert.Equal(t, "msg-6", tail[0].Body)
}

func TestHistoryIsolatedPerZone(t *testing.T) {
	svc, _ := newChatFixture(10)
	ctx := context.Background()

	_, err := svc.Post(ctx, "z1", "p1", "", "in z1", day(0, 9))
	require.NoError(t, err)
	_, err = svc.Post(ctx, "z2", "p1", "", "in z2", day(0, 9))
	require.NoError(t, err)

	assert.Len(t, svc.History("z1", 0), 1)
	assert.Len(t, svc.History("z2", 0), 1)
	assert.Empty(t, svc.History("z3", 0))
}
