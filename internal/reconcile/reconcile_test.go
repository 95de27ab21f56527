package reconcile

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/patrickprogramme/dubsync/pkg/model"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		video      time.Duration
		audio      time.Duration
		wantSpeed  float64
		wantPad    time.Duration
		wantNoop   bool
		wantLength time.Duration
	}{
		{"speech longer", ms(10000), ms(12000), 10000.0 / 12000.0, 0, false, ms(12000)},
		{"speech shorter", ms(10000), ms(8000), 1, ms(2000), false, ms(10000)},
		{"equal", ms(10000), ms(10000), 1, 0, true, ms(10000)},
		{"within tolerance", ms(10000), ms(10000) + 500*time.Microsecond, 1, 0, true, ms(10000)},
		{"just outside tolerance", ms(10000), ms(10001), 10000.0 / 10001.0, 0, false, ms(10001)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Reconcile(tc.video, tc.audio)
			if math.Abs(p.VideoSpeed-tc.wantSpeed) > 1e-9 {
				t.Errorf("VideoSpeed = %v; want %v", p.VideoSpeed, tc.wantSpeed)
			}
			if p.AudioPad != tc.wantPad {
				t.Errorf("AudioPad = %s; want %s", p.AudioPad, tc.wantPad)
			}
			if p.IsNoop() != tc.wantNoop {
				t.Errorf("IsNoop = %v; want %v", p.IsNoop(), tc.wantNoop)
			}
			if p.Duration() != tc.wantLength {
				t.Errorf("Duration = %s; want %s", p.Duration(), tc.wantLength)
			}
		})
	}
}

func TestReconcileSpeedRounded(t *testing.T) {
	p := Reconcile(ms(10000), ms(12000))
	if got := math.Round(p.VideoSpeed*10000) / 10000; got != 0.8333 {
		t.Fatalf("speed = %v; want 0.8333", got)
	}
	if p.PadsAudio() {
		t.Fatalf("a slowed-down clip must not be padded")
	}
}

func TestCheck(t *testing.T) {
	for _, tc := range []struct{ video, audio time.Duration }{
		{0, ms(100)},
		{ms(100), 0},
		{-ms(1), ms(100)},
	} {
		if err := Check(tc.video, tc.audio); !errors.Is(err, model.ErrInvalidDuration) {
			t.Errorf("Check(%s, %s) = %v; want ErrInvalidDuration", tc.video, tc.audio, err)
		}
	}
	if err := Check(ms(1), ms(1)); err != nil {
		t.Fatalf("Check(1ms, 1ms) = %v", err)
	}
}

func TestWithinTolerance(t *testing.T) {
	if p := Within(ms(10000), ms(10040), ms(50)); !p.IsNoop() {
		t.Fatalf("40ms drift with 50ms tolerance: %s", p)
	}
	if p := Within(ms(10000), ms(10040), 0); !p.StretchesVideo() {
		t.Fatalf("zero tolerance falls back to default: %s", p)
	}
}
