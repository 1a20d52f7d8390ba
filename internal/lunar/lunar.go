// Package lunar converts Gregorian dates to the Vietnamese lunar calendar.
//
// The computation follows the astronomical method (new moons and major solar
// terms evaluated at UTC+7), so results match printed Vietnamese calendars
// including leap months.
package lunar

import (
	"fmt"
	"math"
	"time"
)

// TimeZone is the offset in hours the calendar is computed for.
const TimeZone = 7.0

var (
	can = [10]string{"Giáp", "Ất", "Bính", "Đinh", "Mậu", "Kỷ", "Canh", "Tân", "Nhâm", "Quý"}
	chi = [12]string{"Tý", "Sửu", "Dần", "Mão", "Thìn", "Tỵ", "Ngọ", "Mùi", "Thân", "Dậu", "Tuất", "Hợi"}
)

type Date struct {
	Day   int
	Month int
	Year  int
	Leap  bool
}

// YearName returns the sexagenary (Can Chi) name of a lunar year.
func YearName(year int) string {
	return can[mod(year+6, 10)] + " " + chi[mod(year+8, 12)]
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Convert maps a Gregorian calendar day to its lunar date.
func Convert(t time.Time) Date {
	dd, mm, yy := t.Day(), int(t.Month()), t.Year()
	dayNumber := julianDay(dd, mm, yy)

	k := math.Floor((float64(dayNumber) - 2415021.076998695) / 29.530588853)
	monthStart := newMoonDay(k+1, TimeZone)
	if monthStart > dayNumber {
		monthStart = newMoonDay(k, TimeZone)
	}

	a11 := lunarMonth11(yy, TimeZone)
	b11 := a11
	var lunarYear int
	if a11 >= monthStart {
		lunarYear = yy
		a11 = lunarMonth11(yy-1, TimeZone)
	} else {
		lunarYear = yy + 1
		b11 = lunarMonth11(yy+1, TimeZone)
	}

	out := Date{Day: dayNumber - monthStart + 1}
	diff := (monthStart - a11) / 29
	out.Month = diff + 11
	if b11-a11 > 365 {
		leapDiff := leapMonthOffset(a11, TimeZone)
		if diff >= leapDiff {
			out.Month = diff + 10
			if diff == leapDiff {
				out.Leap = true
			}
		}
	}
	if out.Month > 12 {
		out.Month -= 12
	}
	if out.Month >= 11 && diff < 4 {
		lunarYear--
	}
	out.Year = lunarYear
	return out
}

// FormatFull renders the lunar text shown under the wedding date.
// The input is a YYYY-MM-DD date string.
func FormatFull(solar string) (string, error) {
	t, err := time.Parse("2006-01-02", solar)
	if err != nil {
		return "", fmt.Errorf("lunar: invalid date %q: %w", solar, err)
	}
	d := Convert(t)
	month := fmt.Sprintf("%02d", d.Month)
	if d.Leap {
		month += " Nhuận"
	}
	return fmt.Sprintf("(Tức Ngày %02d Tháng %s Năm %s)", d.Day, month, YearName(d.Year)), nil
}

func julianDay(dd, mm, yy int) int {
	a := (14 - mm) / 12
	y := yy + 4800 - a
	m := mm + 12*a - 3
	jd := dd + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	if jd < 2299161 {
		jd = dd + (153*m+2)/5 + 365*y + y/4 - 32083
	}
	return jd
}

func newMoonDay(k, tz float64) int {
	const dr = math.Pi / 180
	t := k / 1236.85
	t2 := t * t
	t3 := t2 * t

	jd1 := 2415020.75933 + 29.53058868*k + 0.0001178*t2 - 0.000000155*t3
	jd1 += 0.00033 * math.Sin((166.56+132.87*t-0.009173*t2)*dr)
	m := 359.2242 + 29.10535608*k - 0.0000333*t2 - 0.00000347*t3
	mpr := 306.0253 + 385.81691806*k + 0.0107306*t2 + 0.00001236*t3
	f := 21.2964 + 390.67050646*k - 0.0016528*t2 - 0.00000239*t3

	c1 := (0.1734-0.000393*t)*math.Sin(m*dr) + 0.0021*math.Sin(2*dr*m)
	c1 = c1 - 0.4068*math.Sin(mpr*dr) + 0.0161*math.Sin(dr*2*mpr)
	c1 = c1 - 0.0004*math.Sin(dr*3*mpr)
	c1 = c1 + 0.0104*math.Sin(dr*2*f) - 0.0051*math.Sin(dr*(m+mpr))
	c1 = c1 - 0.0074*math.Sin(dr*(m-mpr)) + 0.0004*math.Sin(dr*(2*f+m))
	c1 = c1 - 0.0004*math.Sin(dr*(2*f-m)) - 0.0006*math.Sin(dr*(2*f+mpr))
	c1 = c1 + 0.0010*math.Sin(dr*(2*f-mpr)) + 0.0005*math.Sin(dr*(2*mpr+m))

	var deltaT float64
	if t < -11 {
		deltaT = 0.001 + 0.000839*t + 0.0002261*t2 - 0.00000845*t3 - 0.000000081*t*t3
	} else {
		deltaT = -0.000278 + 0.000265*t + 0.000262*t2
	}
	jdNew := jd1 + c1 - deltaT
	return int(math.Floor(jdNew + 0.5 + tz/24))
}

// sunLongitude returns the major solar term index (0..11) at day jdn.
func sunLongitude(jdn int, tz float64) int {
	const dr = math.Pi / 180
	t := (float64(jdn) - 2451545.5 - tz/24) / 36525
	t2 := t * t
	m := 357.52910 + 35999.05030*t - 0.0001559*t2 - 0.00000048*t*t2
	l0 := 280.46645 + 36000.76983*t + 0.0003032*t2
	dl := (1.914600 - 0.004817*t - 0.000014*t2) * math.Sin(dr*m)
	dl += (0.019993-0.000101*t)*math.Sin(dr*2*m) + 0.000290*math.Sin(dr*3*m)
	l := (l0 + dl) * dr
	l -= math.Pi * 2 * math.Floor(l/(math.Pi*2))
	return int(math.Floor(l / math.Pi * 6))
}

func lunarMonth11(yy int, tz float64) int {
	off := float64(julianDay(31, 12, yy)) - 2415021
	k := math.Floor(off / 29.530588853)
	nm := newMoonDay(k, tz)
	if sunLongitude(nm, tz) >= 9 {
		nm = newMoonDay(k-1, tz)
	}
	return nm
}

func leapMonthOffset(a11 int, tz float64) int {
	k := math.Floor((float64(a11)-2415021.076998695)/29.530588853 + 0.5)
	i := 1
	arc := sunLongitude(newMoonDay(k+float64(i), tz), tz)
	for {
		last := arc
		i++
		arc = sunLongitude(newMoonDay(k+float64(i), tz), tz)
		if arc == last || i >= 14 {
			break
		}
	}
	return i - 1
}
