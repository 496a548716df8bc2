package utils

import (
	"testing"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNextDrawTime(t *testing.T) {
	// Wednesday 2026-08-26 10:00
	from := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	daily := NextDrawTime(models.PoolTypeDaily, from)
	assert.Equal(t, time.Date(2026, 8, 26, 21, 0, 0, 0, time.UTC), daily)

	// Past today's slot, rolls to tomorrow.
	late := time.Date(2026, 8, 26, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 27, 21, 0, 0, 0, time.UTC), NextDrawTime(models.PoolTypeDaily, late))

	weekly := NextDrawTime(models.PoolTypeWeekly, from)
	assert.Equal(t, time.Saturday, weekly.Weekday())
	assert.True(t, weekly.After(from))

	monthly := NextDrawTime(models.PoolTypeMonthly, from)
	assert.Equal(t, time.Date(2026, 9, 1, 21, 0, 0, 0, time.UTC), monthly)
}

func TestMaskUsername(t *testing.T) {
	assert.Equal(t, "h*********7", MaskUsername("highroller7"))
	assert.Equal(t, "ab", MaskUsername("ab"))
	assert.Equal(t, "", MaskUsername(""))
}
