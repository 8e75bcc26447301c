package motion

import (
	"testing"
	"time"
)

var base = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// alternate builds samples 150ms apart that flip between two acceleration
// extremes, each flip well above the speed threshold.
func alternate(n int) []Sample {
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		x := 20.0
		if i%2 == 1 {
			x = -20.0
		}
		samples = append(samples, Sample{X: x, Y: 1, Z: 9.8, At: base.Add(time.Duration(i) * 150 * time.Millisecond)})
	}
	return samples
}

func TestDetectorTriggersAfterFourShakes(t *testing.T) {
	d := NewDetector()

	samples := alternate(6)
	fired := 0
	for _, s := range samples {
		if d.Feed(s) {
			fired++
		}
	}
	// The first sample only primes the baseline; shakes 1..4 come from the
	// next four flips and the gesture fires exactly once.
	if fired != 1 {
		t.Fatalf("expected exactly one trigger, got %d", fired)
	}
	if d.Count() != 1 {
		t.Fatalf("expected count restarted at 1, got %d", d.Count())
	}
}

func TestDetectorIgnoresGentleMotion(t *testing.T) {
	d := NewDetector()

	for i := 0; i < 10; i++ {
		s := Sample{X: 0.5 + float64(i%2)*0.2, Y: 0.5, Z: 9.8, At: base.Add(time.Duration(i) * 150 * time.Millisecond)}
		if d.Feed(s) {
			t.Fatalf("gentle motion triggered at sample %d", i)
		}
	}
	if d.Count() != 0 {
		t.Fatalf("gentle motion accumulated count %d", d.Count())
	}
}

func TestDetectorIgnoresRapidFireSamples(t *testing.T) {
	d := NewDetector()
	d.Feed(Sample{X: 20, Y: 1, Z: 9.8, At: base})

	// 10ms apart: 20 samples over 200ms can count at most one shake, so a
	// buzzing sensor cannot complete a gesture on its own.
	for i := 1; i <= 20; i++ {
		s := Sample{X: -20 * float64(i%2), Y: 1, Z: 9.8, At: base.Add(time.Duration(i) * 10 * time.Millisecond)}
		if d.Feed(s) {
			t.Fatalf("rapid-fire sample triggered")
		}
	}
	if d.Count() > 1 {
		t.Fatalf("rapid-fire samples accumulated count %d", d.Count())
	}
}

func TestDetectorResetsAfterQuietSecond(t *testing.T) {
	d := NewDetector()

	samples := alternate(4)
	for _, s := range samples {
		d.Feed(s)
	}
	if d.Count() != 3 {
		t.Fatalf("expected 3 shakes accumulated, got %d", d.Count())
	}

	// A strong movement after a quiet gap starts a fresh gesture.
	late := Sample{X: 20, Y: 1, Z: 9.8, At: samples[len(samples)-1].At.Add(2 * time.Second)}
	if d.Feed(late) {
		t.Fatalf("stale count carried across the timeout")
	}
	if d.Count() != 1 {
		t.Fatalf("expected fresh count 1, got %d", d.Count())
	}
}

func TestDetectorSkipsZeroSample(t *testing.T) {
	d := NewDetector()
	if d.Feed(Sample{At: base}) {
		t.Fatalf("zero sample triggered")
	}
	if d.Count() != 0 {
		t.Fatalf("zero sample changed state")
	}
}
