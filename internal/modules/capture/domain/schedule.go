package domain

import "time"

const (
	DefaultMinCaptures        = 4
	DefaultMaxCapturesPerHour = 12
	DefaultGrabTimeout        = 30 * time.Second
)

// Policy decides how many samples a session of a given length receives.
type Policy struct {
	MinCaptures        int
	MaxCapturesPerHour int
	// GrabTimeout bounds a single device grab. A grab never outlives one
	// interval either.
	GrabTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MinCaptures: DefaultMinCaptures, MaxCapturesPerHour: DefaultMaxCapturesPerHour, GrabTimeout: DefaultGrabTimeout}
}

// Schedule lists tick offsets from session start; the last offset equals
// the session duration and no tick happens at zero.
type Schedule struct {
	Duration    time.Duration
	Interval    time.Duration
	Offsets     []time.Duration
	GrabTimeout time.Duration
}

func (s Schedule) Total() int {
	return len(s.Offsets)
}

// TotalCaptures is max(MinCaptures, floor(hours * MaxCapturesPerHour)).
func (p Policy) TotalCaptures(duration time.Duration) int {
	if duration <= 0 {
		return 0
	}
	p = p.normalized()
	prelim := int(int64(duration) * int64(p.MaxCapturesPerHour) / int64(time.Hour))
	return max(p.MinCaptures, prelim)
}

func (p Policy) Plan(duration time.Duration) Schedule {
	total := p.TotalCaptures(duration)
	if total == 0 {
		return Schedule{Duration: duration}
	}
	offsets := make([]time.Duration, total)
	for k := 1; k <= total; k++ {
		offsets[k-1] = time.Duration(int64(duration) * int64(k) / int64(total))
	}
	interval := duration / time.Duration(total)
	return Schedule{
		Duration:    duration,
		Interval:    interval,
		Offsets:     offsets,
		GrabTimeout: p.grabTimeout(interval),
	}
}

// Deadline is when every tick must have resolved: the last offset plus
// one grab timeout.
func (s Schedule) Deadline() time.Duration {
	return s.Duration + s.GrabTimeout
}

func (p Policy) grabTimeout(interval time.Duration) time.Duration {
	timeout := p.normalized().GrabTimeout
	if interval > 0 && interval < timeout {
		return interval
	}
	return timeout
}

func (p Policy) normalized() Policy {
	if p.MinCaptures <= 0 {
		p.MinCaptures = DefaultMinCaptures
	}
	if p.MaxCapturesPerHour <= 0 {
		p.MaxCapturesPerHour = DefaultMaxCapturesPerHour
	}
	if p.GrabTimeout <= 0 {
		p.GrabTimeout = DefaultGrabTimeout
	}
	return p
}
