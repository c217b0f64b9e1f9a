package chunk

import (
	"math"
	"time"
)

const (
	secondsPerDay = 86400
	// MicrosPerDay is the largest TIME value, 24:00:00.
	MicrosPerDay = secondsPerDay * 1_000_000
	// maxTZOffset is the largest TIME_TZ offset in seconds (15:59:59).
	maxTZOffset = 16*60*60 - 1
)

// Interval is the engine's INTERVAL value.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

// ReadInterval decodes a 16-byte slot.
func ReadInterval(slot []byte) Interval {
	return Interval{
		Months: int32(ByteOrder.Uint32(slot[0:4])),
		Days:   int32(ByteOrder.Uint32(slot[4:8])),
		Micros: int64(ByteOrder.Uint64(slot[8:16])),
	}
}

// PutInterval encodes iv into a 16-byte slot.
func PutInterval(slot []byte, iv Interval) {
	ByteOrder.PutUint32(slot[0:4], uint32(iv.Months))
	ByteOrder.PutUint32(slot[4:8], uint32(iv.Days))
	ByteOrder.PutUint64(slot[8:16], uint64(iv.Micros))
}

// IntervalFromDuration expresses d in microseconds only.
func IntervalFromDuration(d time.Duration) Interval {
	return Interval{Micros: d.Microseconds()}
}

// Duration approximates the interval with 30-day months and 24-hour days.
func (iv Interval) Duration() time.Duration {
	days := int64(iv.Months)*30 + int64(iv.Days)
	return time.Duration(days)*24*time.Hour + time.Duration(iv.Micros)*time.Microsecond
}

// DateFromDays converts DATE storage (days since 1970-01-01) to a UTC time.
func DateFromDays(days int32) time.Time {
	return time.Unix(int64(days)*secondsPerDay, 0).UTC()
}

// DaysFromDate converts t to days since 1970-01-01, using its UTC calendar date.
func DaysFromDate(t time.Time) int64 {
	secs := t.UTC().Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return days
}

// TimeFromMicros converts TIME storage (microseconds since midnight) to a
// time on 1970-01-01 UTC.
func TimeFromMicros(micros int64) time.Time {
	return time.UnixMicro(micros).UTC()
}

// MicrosFromTime returns the microseconds since midnight of t in its own location.
func MicrosFromTime(t time.Time) int64 {
	h, m, s := t.Clock()
	return (int64(h)*3600+int64(m)*60+int64(s))*1_000_000 + int64(t.Nanosecond()/1000)
}

// TimeTZ is a time of day with a fixed UTC offset.
type TimeTZ struct {
	Micros int64
	Offset int32 // seconds east of UTC
}

// DecodeTimeTZ unpacks TIME_TZ storage: micros in the upper 40 bits, the
// offset stored as maxTZOffset-offset in the lower 24 bits.
func DecodeTimeTZ(bits uint64) TimeTZ {
	return TimeTZ{
		Micros: int64(bits >> 24),
		Offset: int32(maxTZOffset - int64(bits&0xFFFFFF)),
	}
}

// Valid reports whether t fits TIME_TZ storage.
func (t TimeTZ) Valid() bool {
	return t.Micros >= 0 && t.Micros <= MicrosPerDay && t.Offset >= -maxTZOffset && t.Offset <= maxTZOffset
}

// Encode packs the value into TIME_TZ storage. t must be Valid.
func (t TimeTZ) Encode() uint64 {
	return uint64(t.Micros)<<24 | uint64(maxTZOffset-int64(t.Offset))&0xFFFFFF
}

// Time returns the value on 1970-01-01 in a fixed zone.
func (t TimeTZ) Time() time.Time {
	zone := time.FixedZone("", int(t.Offset))
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, zone).Add(time.Duration(t.Micros) * time.Microsecond)
}

// TimeTZFromTime captures the clock time and zone offset of t.
func TimeTZFromTime(t time.Time) TimeTZ {
	_, off := t.Zone()
	return TimeTZ{Micros: MicrosFromTime(t), Offset: int32(off)}
}

// TimestampFromTicks converts timestamp storage with the given tick unit to a UTC time.
func TimestampFromTicks(ticks int64, unit time.Duration) time.Time {
	switch unit {
	case time.Second:
		return time.Unix(ticks, 0).UTC()
	case time.Millisecond:
		return time.UnixMilli(ticks).UTC()
	case time.Nanosecond:
		return time.Unix(0, ticks).UTC()
	default:
		return time.UnixMicro(ticks).UTC()
	}
}

var (
	minSecondTime = time.Unix(math.MinInt64, 0)
	minMilliTime  = time.UnixMilli(math.MinInt64)
	maxMilliTime  = time.UnixMilli(math.MaxInt64)
	minMicroTime  = time.UnixMicro(math.MinInt64)
	maxMicroTime  = time.UnixMicro(math.MaxInt64)
	minNanoTime   = time.Unix(0, math.MinInt64)
	maxNanoTime   = time.Unix(0, math.MaxInt64)
)

// TimestampInRange reports whether t is representable as int64 ticks of unit.
func TimestampInRange(t time.Time, unit time.Duration) bool {
	var lo, hi time.Time
	switch unit {
	case time.Second:
		return !t.Before(minSecondTime)
	case time.Millisecond:
		lo, hi = minMilliTime, maxMilliTime
	case time.Nanosecond:
		lo, hi = minNanoTime, maxNanoTime
	default:
		lo, hi = minMicroTime, maxMicroTime
	}
	return !t.Before(lo) && !t.After(hi)
}

// TicksFromTimestamp converts t to ticks of the given unit since the epoch.
// Check TimestampInRange first; out-of-range times wrap.
func TicksFromTimestamp(t time.Time, unit time.Duration) int64 {
	switch unit {
	case time.Second:
		return t.Unix()
	case time.Millisecond:
		return t.UnixMilli()
	case time.Nanosecond:
		return t.UnixNano()
	default:
		return t.UnixMicro()
	}
}
