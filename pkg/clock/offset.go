// Package clock shares a clock-offset correction between SDK clients.
//
// Each client built by the factory carries a Setting. A Setting owns a private Offset until
// Sync rebinds it to a shared one, after which every synced client reads and writes the same
// value.
package clock

import (
	"time"

	"go.uber.org/atomic"
)

// Global is the process-wide offset used when clients are synced without an explicit Offset.
var Global = new(Offset) //nolint:gochecknoglobals // process-wide clock correction.

// Offset is a clock correction shared by reference. The zero value is a zero offset.
type Offset struct {
	value atomic.Duration
}

// NewOffset returns an Offset initialised to the provided correction.
func NewOffset(initial time.Duration) *Offset {
	offset := new(Offset)
	offset.value.Store(initial)

	return offset
}

// Load returns the current correction.
func (o *Offset) Load() time.Duration {
	if o == nil {
		return 0
	}

	return o.value.Load()
}

// Store replaces the current correction.
func (o *Offset) Store(correction time.Duration) {
	if o == nil {
		return
	}

	o.value.Store(correction)
}

// Setting is the clock configuration attached to a single client.
type Setting struct {
	offset atomic.Pointer[Offset]
	now    func() time.Time
}

// NewSetting returns a Setting backed by a private zero Offset.
func NewSetting() *Setting {
	setting := &Setting{now: time.Now}
	setting.offset.Store(new(Offset))

	return setting
}

// Offset returns the correction currently observed by the client.
func (s *Setting) Offset() time.Duration {
	return s.current().Load()
}

// SetOffset writes the correction. Once bound, the write is visible to every client sharing
// the Offset.
func (s *Setting) SetOffset(correction time.Duration) {
	s.current().Store(correction)
}

// Bind points the setting at a shared Offset. A nil Offset is ignored.
func (s *Setting) Bind(shared *Offset) {
	if s == nil || shared == nil {
		return
	}

	s.offset.Store(shared)
}

// BoundTo reports whether the setting currently reads from shared.
func (s *Setting) BoundTo(shared *Offset) bool {
	return s != nil && shared != nil && s.offset.Load() == shared
}

// Now returns the local time corrected by the current offset.
func (s *Setting) Now() time.Time {
	return s.localNow().Add(s.Offset())
}

func (s *Setting) current() *Offset {
	if s == nil {
		return nil
	}

	return s.offset.Load()
}

func (s *Setting) localNow() time.Time {
	if s == nil || s.now == nil {
		return time.Now()
	}

	return s.now()
}
