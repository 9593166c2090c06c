package daykey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsUTCAndZeroPadded(t *testing.T) {
	// UTC+8 的 1 月 1 日凌晨仍属于 UTC 的前一天
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2026, 1, 1, 3, 0, 0, 0, loc)

	assert.Equal(t, "2025-12-31", Key(ts))
	assert.Equal(t, "2026-03-05", Key(time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)))
}

func TestYesterdayKeyCrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, "2026-02-28", YesterdayKey(time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC)))
	assert.Equal(t, "2025-12-31", YesterdayKey(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)))
	// 闰年
	assert.Equal(t, "2024-02-29", YesterdayKey(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		lastKey string
		want    bool
	}{
		{"absent key is never stale", "", false},
		{"today is fresh", "2026-08-26", false},
		{"yesterday is fresh", "2026-08-25", false},
		{"two days ago is stale", "2026-08-24", true},
		{"a month ago is stale", "2026-07-26", true},
		{"future key is stale", "2026-08-27", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsStale(tc.lastKey, now))
		})
	}
}
