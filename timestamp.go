package colbind

import (
	"math"
	"time"
)

// SecondsPerDay converts between day-based and second-based epoch offsets.
const SecondsPerDay = 24 * 60 * 60

// TimeUnit selects how a numeric value is interpreted before calendar
// conversion: as fractional seconds since the Unix epoch, or as fractional
// days since the Unix epoch.
type TimeUnit int

const (
	UnitSeconds TimeUnit = iota
	UnitDays
)

// Timestamp holds broken-down calendar fields. It exists only transiently
// during codec conversion; column buffers store the numeric encodings.
type Timestamp struct {
	Year  int
	Month int
	Day   int
	Hour  int
	Min   int
	Sec   int
	// Frac is the sub-second fraction in [0, 1), preserved verbatim across
	// both conversion directions.
	Frac float64
}

// TimestampCodec converts between fractional epoch offsets and calendar
// fields. Both directions use the same fixed reference location, so
// FromCalendar(ToCalendar(v)) == v within floating-point rounding of the
// fractional component.
type TimestampCodec struct {
	loc *time.Location
}

// NewTimestampCodec creates a codec anchored to loc. A nil loc means the
// process-local timezone.
func NewTimestampCodec(loc *time.Location) *TimestampCodec {
	if loc == nil {
		loc = time.Local
	}
	return &TimestampCodec{loc: loc}
}

// ToCalendar splits value into integer and fractional parts and breaks the
// integer part down into calendar fields in the codec's location. A day
// unit is scaled to seconds first.
func (c *TimestampCodec) ToCalendar(value float64, unit TimeUnit) Timestamp {
	if unit == UnitDays {
		value *= SecondsPerDay
	}
	secs, frac := math.Modf(value)
	t := time.Unix(int64(secs), 0).In(c.loc)
	return Timestamp{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
		Hour:  t.Hour(),
		Min:   t.Minute(),
		Sec:   t.Second(),
		Frac:  frac,
	}
}

// FromCalendar computes epoch seconds from calendar fields in the codec's
// location and adds back the fractional component.
func (c *TimestampCodec) FromCalendar(ts Timestamp) float64 {
	t := time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Min, ts.Sec, 0, c.loc)
	return float64(t.Unix()) + ts.Frac
}
