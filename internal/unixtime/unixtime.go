// Package unixtime provides the two timestamp forms stored by the index:
// plain millisecond Unix time (Millis) and a monotonic-unique variant (Uniq)
// that never repeats within one process, making it safe as a strict
// ordering watermark for cursor scans.
package unixtime

import (
	"sync"
	"time"
)

// Millis is a millisecond Unix timestamp.
type Millis int64

// Now returns the current time as Millis.
func Now() Millis {
	return Millis(time.Now().UnixMilli())
}

// Time converts m to a time.Time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

// Uniq is a monotonic-unique timestamp: the millisecond Unix time shifted
// left 16 bits, with the low bits acting as a per-millisecond sequence.
// Values produced by one Source are strictly increasing.
type Uniq int64

// Millis returns the millisecond component of u.
func (u Uniq) Millis() Millis {
	return Millis(u >> 16)
}

// Source hands out strictly increasing Uniq values.
type Source struct {
	mu   sync.Mutex
	last Uniq
}

// Next returns a Uniq strictly greater than every value previously
// returned by this Source.
func (s *Source) Next() Uniq {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := Uniq(time.Now().UnixMilli()) << 16
	if u <= s.last {
		u = s.last + 1
	}
	s.last = u
	return u
}

var defaultSource Source

// NewUniq returns the next value from the process-wide Source.
func NewUniq() Uniq {
	return defaultSource.Next()
}
