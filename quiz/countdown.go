////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package quiz

import (
	"fmt"
	"sync"
	"time"
)

// Urgency grades how close the countdown is to expiry so the clock can be
// restyled as time runs out.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyWarning
	UrgencyDanger
)

const (
	// warningThreshold is the remaining time at which the clock turns to
	// [UrgencyWarning].
	warningThreshold = 10 * time.Minute

	// dangerThreshold is the remaining time at which the clock turns to
	// [UrgencyDanger].
	dangerThreshold = 5 * time.Minute
)

// urgencyFor grades the remaining time.
func urgencyFor(remaining time.Duration) Urgency {
	switch {
	case remaining <= dangerThreshold:
		return UrgencyDanger
	case remaining <= warningThreshold:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// FormatClock renders a duration as MM:SS with both fields zero-padded. The
// minute field grows past two digits for long limits rather than wrapping.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// TickFunc receives the clock display once per second.
type TickFunc func(display string, urgency Urgency)

// Countdown runs a quiz attempt's clock. It ticks once per second and fires
// an expiry callback exactly once when the time limit runs out. Stopping
// after expiry is a no-op.
type Countdown struct {
	remaining time.Duration
	interval  time.Duration
	tick      TickFunc
	onExpire  func()

	quit     chan struct{}
	stopOnce sync.Once
	mux      sync.Mutex
}

// NewCountdown creates a Countdown for the given time limit. The tick
// callback fires immediately on Start and then once per second.
func NewCountdown(limit time.Duration, tick TickFunc) *Countdown {
	return &Countdown{
		remaining: limit,
		interval:  time.Second,
		tick:      tick,
		quit:      make(chan struct{}),
	}
}

// SetOnExpire registers the expiry callback. It must be called before Start.
func (c *Countdown) SetOnExpire(f func()) { c.onExpire = f }

// Remaining returns the time left on the clock.
func (c *Countdown) Remaining() time.Duration {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.remaining
}

// Start begins ticking. The clock counts the time limit down wall-second by
// wall-second regardless of how long tick callbacks take.
func (c *Countdown) Start() {
	c.tick(FormatClock(c.remaining), urgencyFor(c.remaining))

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.mux.Lock()
				c.remaining -= time.Second
				remaining := c.remaining
				c.mux.Unlock()

				if remaining <= 0 {
					c.tick(FormatClock(0), UrgencyDanger)
					c.Stop()
					if c.onExpire != nil {
						c.onExpire()
					}
					return
				}
				c.tick(FormatClock(remaining), urgencyFor(remaining))
			case <-c.quit:
				return
			}
		}
	}()
}

// Stop halts the clock without firing the expiry callback. It is safe to
// call more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
}
