package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownSecondsForFailCount(t *testing.T) {
	tests := []struct {
		failCount int
		want      int
	}{
		{0, 1},   // 2^0=1
		{1, 2},   // 2^1=2
		{2, 4},   // 2^2=4
		{3, 8},   // 2^3=8
		{4, 16},  // 2^4=16
		{5, 30},  // 2^5=32 -> cap 30
		{6, 30},  // 2^6=64 -> cap 30
		{10, 30}, // cap 30
		{80, 30}, // overflow -> cap 30
	}
	for _, tt := range tests {
		got := CooldownSecondsForFailCount(tt.failCount)
		if got != tt.want {
			t.Errorf("CooldownSecondsForFailCount(%d) = %d, want %d", tt.failCount, got, tt.want)
		}
	}
}

func TestLoginThrottle(t *testing.T) {
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	th := NewLoginThrottle()
	th.now = func() time.Time { return now }

	assert.Equal(t, 0, th.WaitSeconds("a@b.co"))

	th.RecordFailed("a@b.co")
	assert.Equal(t, 3, th.WaitSeconds("A@B.CO"), "2s cooldown rounds up")

	now = now.Add(2 * time.Second)
	assert.Equal(t, 0, th.WaitSeconds("a@b.co"))

	for i := 0; i < 8; i++ {
		th.RecordFailed("a@b.co")
	}
	assert.LessOrEqual(t, th.WaitSeconds("a@b.co"), ThrottleCooldownCapSeconds+1)
	assert.Greater(t, th.WaitSeconds("a@b.co"), 0)

	th.RecordSuccess("a@b.co")
	assert.Equal(t, 0, th.WaitSeconds("a@b.co"))
}
