package core

import "time"

// Display paces the frame loop to a frame-rate cap and measures the time
// between frames.
type Display struct {
	budget time.Duration
	last   time.Time
	delta  time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewDisplay caps the loop at fpsCap frames per second; 0 disables the cap.
func NewDisplay(fpsCap int) *Display {
	return newDisplay(fpsCap, time.Now, time.Sleep)
}

func newDisplay(fpsCap int, now func() time.Time, sleep func(time.Duration)) *Display {
	d := &Display{now: now, sleep: sleep}
	if fpsCap > 0 {
		d.budget = time.Second / time.Duration(fpsCap)
	}
	d.last = now()
	return d
}

// Sync waits out the rest of the frame budget and records the frame delta.
func (d *Display) Sync() {
	if d.budget > 0 {
		if remaining := d.budget - d.now().Sub(d.last); remaining > 0 {
			d.sleep(remaining)
		}
	}
	t := d.now()
	d.delta = t.Sub(d.last)
	d.last = t
}

// FrameTime is the last frame's duration in seconds.
func (d *Display) FrameTime() float32 {
	return float32(d.delta.Seconds())
}
