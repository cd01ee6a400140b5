// Package format turns API values into the strings shown on the weather page.
//
// Unix timestamps are shifted by the location's UTC offset in seconds and then read
// in UTC, so the output is the wall clock at the location regardless of the host zone.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// WeekdayNames are indexed by time.Weekday
var WeekdayNames = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// MonthNames are truncated month names indexed by time.Month-1
var MonthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Local returns the wall clock at a location as a UTC time
func Local(unix, timezone int64) time.Time {
	return time.Unix(unix+timezone, 0).UTC()
}

// Date renders "Wednesday 15, Nov"
func Date(unix, timezone int64) string {
	t := Local(unix, timezone)
	return WeekdayNames[t.Weekday()] + " " + strconv.Itoa(t.Day()) + ", " + MonthNames[t.Month()-1]
}

// Time renders a 12-hour clock such as "2:05 PM". Minutes are always two digits.
func Time(unix, timezone int64) string {
	t := Local(unix, timezone)
	return strconv.Itoa(hour12(t.Hour())) + ":" + twoDigits(t.Minute()) + " " + period(t.Hour())
}

// Hours renders the hour only, such as "2 PM"
func Hours(unix, timezone int64) string {
	t := Local(unix, timezone)
	return strconv.Itoa(hour12(t.Hour())) + " " + period(t.Hour())
}

// DayMonth renders "15 Nov"
func DayMonth(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + MonthNames[t.Month()-1]
}

// MpsToKmh converts meters per second to kilometers per hour
func MpsToKmh(mps float64) float64 {
	return mps * 3600 / 1000
}

// Degrees truncates a temperature toward zero
func Degrees(temp float64) int {
	return int(temp)
}

// Kilometers renders a distance in meters as kilometers without trailing zeros
func Kilometers(meters float64) string {
	return strconv.FormatFloat(meters/1000, 'f', -1, 64)
}

// Precision renders v with the given number of significant digits, switching to
// exponent notation ("1.23e+5") when the exponent is below -6 or not below digits.
// Ties round away from zero: Precision(12.25, 3) is "12.3".
func Precision(v float64, digits int) string {
	digits = min(max(digits, 1), 100)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	kept, exp := significant(v, digits)

	if exp < -6 || exp >= digits {
		mantissa := kept[:1]
		if digits > 1 {
			mantissa += "." + kept[1:]
		}
		if exp >= 0 {
			return sign + mantissa + "e+" + strconv.Itoa(exp)
		}
		return sign + mantissa + "e" + strconv.Itoa(exp)
	}

	if exp < 0 {
		return sign + "0." + strings.Repeat("0", -exp-1) + kept
	}
	if exp+1 == len(kept) {
		return sign + kept
	}
	return sign + kept[:exp+1] + "." + kept[exp+1:]
}

// maxExactDigits covers the full decimal expansion of any float64
const maxExactDigits = 767

// significant rounds a non-negative v to digits significant digits, half away from
// zero, and returns them with the decimal exponent of the first one.
func significant(v float64, digits int) (string, int) {
	s := strconv.FormatFloat(v, 'e', maxExactDigits, 64)
	mantissa, expPart, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expPart)
	all := strings.Replace(mantissa, ".", "", 1)

	kept := []byte(all[:digits])
	if all[digits] < '5' {
		return string(kept), exp
	}

	i := digits - 1
	for ; i >= 0 && kept[i] == '9'; i-- {
		kept[i] = '0'
	}
	if i >= 0 {
		kept[i]++
		return string(kept), exp
	}
	// 9.99 rounded up to 10.0
	return "1" + string(kept[:digits-1]), exp + 1
}

func hour12(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

func period(h int) string {
	if h >= 12 {
		return "PM"
	}
	return "AM"
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
