package audioio

// SourceID identifies one scheduled playback buffer so it can be
// stopped individually.
type SourceID uint64

// Output is a playback device with sample-accurate scheduling against
// its own monotonic clock. Now and ScheduleAt use the same timebase in
// seconds; buffers scheduled back to back at exact times play without
// gaps.
type Output interface {
	// ScheduleAt queues samples to begin playing at startAt on the
	// device clock. A startAt in the past plays immediately.
	ScheduleAt(samples []int16, startAt float64) (SourceID, error)

	// Stop cancels one scheduled or playing buffer. Unknown IDs are
	// ignored.
	Stop(id SourceID) error

	// StopAll cancels everything scheduled or playing.
	StopAll() error

	// Now reports the current device clock in seconds.
	Now() float64

	Close() error
}
