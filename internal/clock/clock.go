// Package clock provides the wall-clock contract the core control loop
// depends on: seconds-since-epoch "now", and its localtime decomposition
// into weekday/hour/minute/second.
//
// A real device gets its time from an RTC or NTP-synced system clock,
// which is monotone under normal operation but may jump if the clock is
// set. Tests use a mock that can be driven forward or set arbitrarily.
package clock

import "time"

// Localtime is the decomposition of a wall-clock timestamp the Timetable
// needs to compute slot coordinates. Weekday is 0-6 with Monday = 0,
// matching spec.md's slot identity.
type Localtime struct {
	Year, Month, Day int
	Hour, Minute, Sec int
	Weekday           int
}

// Clock is the narrow interface the core control loop consumes. The real
// implementation wraps time.Now; out of scope is how the system clock
// itself is kept accurate (RTC, NTP) — that's the host OS's job.
type Clock interface {
	// Now returns seconds since the Unix epoch.
	Now() int64
	// Localtime decomposes a seconds-since-epoch timestamp.
	Localtime(t int64) Localtime
}

// Real is the production Clock, backed by the host's system time.
type Real struct{}

func (Real) Now() int64 {
	return time.Now().Unix()
}

func (Real) Localtime(t int64) Localtime {
	tm := time.Unix(t, 0).Local()
	// time.Weekday is 0=Sunday..6=Saturday; spec wants 0=Monday..6=Sunday.
	wd := (int(tm.Weekday()) + 6) % 7
	return Localtime{
		Year:    tm.Year(),
		Month:   int(tm.Month()),
		Day:     tm.Day(),
		Hour:    tm.Hour(),
		Minute:  tm.Minute(),
		Sec:     tm.Second(),
		Weekday: wd,
	}
}
