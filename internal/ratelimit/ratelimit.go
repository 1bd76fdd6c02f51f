// Package ratelimit enforces a minimum spacing between outbound calls
// to the quota-limited indicator API.
package ratelimit

import "time"

// Limiter grants slots no closer together than the configured delay.
// Callers are strictly sequential, so a single last-grant timestamp is
// all the state needed; there is no queue and no locking.
type Limiter struct {
	delay     time.Duration
	now       func() time.Time
	sleep     func(time.Duration)
	lastGrant time.Time
}

// New builds a limiter with the given spacing. now and sleep are
// injectable for deterministic tests; nil selects the real clock.
func New(delay time.Duration, now func() time.Time, sleep func(time.Duration)) *Limiter {
	if now == nil {
		now = time.Now
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Limiter{delay: delay, now: now, sleep: sleep}
}

// Wait blocks until at least the configured delay has elapsed since the
// previous granted slot, then records the grant.
func (l *Limiter) Wait() {
	if l.delay <= 0 {
		l.lastGrant = l.now()
		return
	}
	if !l.lastGrant.IsZero() {
		elapsed := l.now().Sub(l.lastGrant)
		if elapsed < l.delay {
			l.sleep(l.delay - elapsed)
		}
	}
	l.lastGrant = l.now()
}
