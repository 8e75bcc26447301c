// Package motion detects shake gestures from accelerometer samples sent by
// a client device. Four strong movements within a second trigger hands-free
// search activation.
package motion

import (
	"math"
	"sync"
	"time"
)

const (
	shakeThreshold = 60.0
	shakeTimeout   = time.Second
	requiredShakes = 4
	minSampleGap   = 100 * time.Millisecond
)

// Sample is one accelerometer reading, gravity included.
type Sample struct {
	X, Y, Z float64
	At      time.Time
}

// Detector accumulates samples and reports when a full shake gesture
// completes. Samples closer together than 100ms are ignored so a fast
// sensor cannot inflate the count.
type Detector struct {
	mu         sync.Mutex
	shakeCount int
	lastAt     time.Time
	lastSum    float64
	primed     bool
}

func NewDetector() *Detector {
	return &Detector{}
}

// Feed processes one sample and returns true when the gesture completes.
// The count resets after a completed gesture and after a quiet second.
func (d *Detector) Feed(sample Sample) bool {
	if sample.X == 0 && sample.Y == 0 && sample.Z == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.primed {
		d.primed = true
		d.lastAt = sample.At
		d.lastSum = sample.X + sample.Y + sample.Z
		return false
	}

	elapsed := sample.At.Sub(d.lastAt)
	if elapsed <= minSampleGap {
		return false
	}
	if elapsed > shakeTimeout {
		d.shakeCount = 0
	}

	sum := sample.X + sample.Y + sample.Z
	speed := math.Abs(sum-d.lastSum) / float64(elapsed.Milliseconds()) * 10000

	d.lastAt = sample.At
	d.lastSum = sum

	if speed > shakeThreshold {
		d.shakeCount++
		if d.shakeCount >= requiredShakes {
			d.shakeCount = 0
			return true
		}
	}
	return false
}

// Count returns the shakes accumulated toward the next trigger.
func (d *Detector) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shakeCount
}

// Reset clears any partial gesture.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shakeCount = 0
	d.primed = false
}
