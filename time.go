package orbitcalc

import (
	"fmt"
	"math"
	"strconv"
)

// A Kerbin day is six hours long.
const (
	secondsPerMinute = 60
	minutesPerHour   = 60
	hoursPerDay      = 6
)

// FormatDuration writes a number of seconds as "{days} days, {hours} hours, {mins} mins, {secs} secs"
// using six-hour days. Fractional seconds stay in the seconds slot.
func FormatDuration(seconds float64) string {
	t := seconds
	secs := math.Mod(t, secondsPerMinute)
	t = (t - secs) / secondsPerMinute
	mins := math.Mod(t, minutesPerHour)
	t = (t - mins) / minutesPerHour
	hours := math.Mod(t, hoursPerDay)
	days := (t - hours) / hoursPerDay
	return fmt.Sprintf("%s days, %s hours, %s mins, %s secs", number(days), number(hours), number(mins), number(secs))
}

// number formats v in its shortest form, without a sign on zero.
func number(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
