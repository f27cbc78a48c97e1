package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Time is simulated time as a count of indivisible ticks.
// The physical length of a tick is the simulator's Resolution.
type Time int64

// Forever is used as a run duration to simulate without a time limit.
const Forever Time = math.MaxInt64

// Duration is a physical time span counted in femtoseconds. It covers the
// picosecond resolutions hardware models need, which time.Duration cannot.
type Duration int64

const (
	Femtosecond Duration = 1
	Picosecond           = 1000 * Femtosecond
	Nanosecond           = 1000 * Picosecond
	Microsecond          = 1000 * Nanosecond
	Millisecond          = 1000 * Microsecond
	Second               = 1000 * Millisecond
)

// DefaultResolution is the tick length used when Config.Resolution is zero.
const DefaultResolution = Nanosecond

type durationUnit struct {
	name string
	size Duration
}

// largest first, for formatting
var durationUnits = []durationUnit{
	{"s", Second},
	{"ms", Millisecond},
	{"us", Microsecond},
	{"ns", Nanosecond},
	{"ps", Picosecond},
	{"fs", Femtosecond},
}

// ParseDuration parses a decimal number followed by a unit, such as "100ps",
// "1.5ns" or "2us". Valid units are "fs", "ps", "ns", "us" (or "µs"), "ms"
// and "s". Digits finer than a femtosecond are truncated.
func ParseDuration(s string) (Duration, error) {
	orig := s
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "0" {
		return 0, nil
	}
	i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if i <= 0 {
		return 0, errors.Errorf("invalid duration %q", orig)
	}
	unitName := s[i:]
	if unitName == "µs" {
		unitName = "us"
	}
	var unit Duration
	for _, u := range durationUnits {
		if u.name == unitName {
			unit = u.size
		}
	}
	if unit == 0 {
		return 0, errors.Errorf("unknown unit %q in duration %q", s[i:], orig)
	}

	whole, frac, _ := strings.Cut(s[:i], ".")
	if whole == "" && frac == "" {
		return 0, errors.Errorf("invalid duration %q", orig)
	}
	var d Duration
	if whole != "" {
		w, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || Duration(w) > math.MaxInt64/unit {
			return 0, errors.Errorf("duration %q out of range", orig)
		}
		d = Duration(w) * unit
	}
	scale := unit
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, errors.Errorf("invalid duration %q", orig)
		}
		scale /= 10
		d += Duration(c-'0') * scale
	}
	if neg {
		d = -d
	}
	return d, nil
}

// String renders d in the largest unit it reaches, e.g. "100ps" or "1.5us".
func (d Duration) String() string {
	if d == 0 {
		return "0s"
	}
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	for _, u := range durationUnits {
		if d < u.size {
			continue
		}
		s := strconv.FormatInt(int64(d/u.size), 10)
		if rem := d % u.size; rem != 0 {
			digits := len(strconv.FormatInt(int64(u.size), 10)) - 1
			s += "." + strings.TrimRight(fmt.Sprintf("%0*d", digits, int64(rem)), "0")
		}
		return sign + s + u.name
	}
	return sign + strconv.FormatInt(int64(d), 10) + "fs"
}

// Add returns t+d, saturating at Forever.
func (t Time) Add(d Time) Time {
	if d > 0 && t > Forever-d {
		return Forever
	}
	return t + d
}

// Sub returns t-u.
func (t Time) Sub(u Time) Time {
	return t - u
}

// Format renders t in physical units at resolution res, e.g. "15ns".
func (t Time) Format(res Duration) string {
	if t == Forever {
		return "forever"
	}
	return (Duration(t) * res).String()
}

func (t Time) String() string {
	if t == Forever {
		return "forever"
	}
	return fmt.Sprintf("%d", int64(t))
}

// Ticks converts a physical duration to ticks at resolution res,
// rounding to the nearest tick.
func Ticks(d Duration, res Duration) Time {
	if res <= 0 {
		res = DefaultResolution
	}
	return Time((d + res/2) / res)
}
