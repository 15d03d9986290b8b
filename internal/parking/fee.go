package parking

import "time"

const DefaultHourlyRate int64 = 10

// CalculateFee bills whole elapsed hours, truncating partial hours.
// A 59 minute stay is free and a 61 minute stay is one hour.
func CalculateFee(entry, exit time.Time, hourlyRate int64) (hours, fee int64) {
	elapsed := exit.Sub(entry)
	if elapsed <= 0 {
		return 0, 0
	}
	hours = int64(elapsed / time.Hour)
	return hours, hours * hourlyRate
}
