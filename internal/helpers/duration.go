package helpers

import (
	"strconv"

	"github.com/MaxConsolas/marzban-shop/internal/constants"
)

// MonthsToSeconds converts a subscription length in months to seconds,
// counting a month as 30 days
func MonthsToSeconds(months int) int64 {
	return int64(months) * constants.SecondsPerMonth
}

// HoursToSeconds converts a trial period length in hours to seconds
func HoursToSeconds(hours int) int64 {
	return int64(hours) * constants.SecondsPerHour
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
