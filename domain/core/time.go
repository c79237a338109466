package core

import (
	"time"
)

// Timestamp represents a wall-clock point in time with timezone awareness.
// Wall-clock stamps record when a vessel was created or mutated by the
// host process; they never drive simulation dynamics.
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// Hours is simulated time, measured in hours since the start of a run.
// The simulation clock is step-discrete and advances only through
// Engine.AdvanceTime; fractional hours are routine, so a plain float64
// beats time.Duration for rate*time arithmetic.
type Hours float64

// Days converts simulated days to Hours.
func Days(d float64) Hours { return Hours(d * 24) }

// Float returns the raw hour count.
func (h Hours) Float() float64 { return float64(h) }

// Days returns the hour count expressed in days.
func (h Hours) Days() float64 { return float64(h) / 24 }

// Sub returns the elapsed hours between h and an earlier stamp u.
func (h Hours) Sub(u Hours) Hours { return h - u }
