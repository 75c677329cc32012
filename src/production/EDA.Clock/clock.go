package clock

import "time"

// Clock returns the current time. Handlers take a Clock so tests can pin time.
type Clock func() time.Time

// DefaultZoneName is the abbreviation for East Africa Time.
const DefaultZoneName = "EAT"

// DefaultOffset is the UTC offset of East Africa Time. EAT has no daylight saving.
const DefaultOffset = 3 * time.Hour

// FixedZone returns a location with a constant offset from UTC
func FixedZone(name string, offset time.Duration) *time.Location {
	return time.FixedZone(name, int(offset/time.Second))
}

// NowIn converts now to the named fixed offset. It has no side effects.
func NowIn(now time.Time, name string, offset time.Duration) time.Time {
	return now.In(FixedZone(name, offset))
}

// InZone returns a Clock reporting wall-clock time in the named fixed offset
func InZone(name string, offset time.Duration) Clock {
	return func() time.Time {
		return NowIn(time.Now(), name, offset)
	}
}

// EAT returns a Clock reporting wall-clock time in East Africa Time
func EAT() Clock {
	return InZone(DefaultZoneName, DefaultOffset)
}

// Fixed returns a Clock that always reports t
func Fixed(t time.Time) Clock {
	return func() time.Time {
		return t
	}
}
