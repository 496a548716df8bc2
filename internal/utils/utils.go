package utils

import (
	"time"

	"github.com/goldspin/casino-backend/internal/models"
)

// NextDrawTime returns the next scheduled draw instant after a draw that ran
// at "from". Daily pools draw at 21:00, weekly pools on Saturday 21:00,
// monthly pools on the 1st at 21:00, all in the server's local time.
func NextDrawTime(poolType models.PoolType, from time.Time) time.Time {
	at := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 21, 0, 0, 0, t.Location())
	}

	switch poolType {
	case models.PoolTypeWeekly:
		next := at(from)
		for next.Weekday() != time.Saturday || !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	case models.PoolTypeMonthly:
		next := time.Date(from.Year(), from.Month(), 1, 21, 0, 0, 0, from.Location())
		if !next.After(from) {
			next = next.AddDate(0, 1, 0)
		}
		return next
	default: // DAILY
		next := at(from)
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}
}

// MaskUsername masks a username for log output, keeping the first and last
// character (e.g. "highroller7" -> "h*********7").
func MaskUsername(username string) string {
	runes := []rune(username)
	if len(runes) <= 2 {
		return username
	}
	masked := make([]rune, len(runes))
	masked[0] = runes[0]
	masked[len(runes)-1] = runes[len(runes)-1]
	for i := 1; i < len(runes)-1; i++ {
		masked[i] = '*'
	}
	return string(masked)
}
