package orientation

import (
	"math"
	"testing"
	"time"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFromQuaternionIdentity(t *testing.T) {
	p := FromQuaternion([4]float64{0, 0, 0, 1})
	if p != (Pose{}) {
		t.Fatalf("identity pose=%+v", p)
	}
}

func TestFromQuaternionYaw90(t *testing.T) {
	p := FromQuaternion([4]float64{0, 0, math.Sqrt2 / 2, math.Sqrt2 / 2})
	if !near(p.Yaw, 90, 1e-9) || !near(p.Roll, 0, 1e-9) || !near(p.Pitch, 0, 1e-9) {
		t.Fatalf("pose=%+v, want yaw 90", p)
	}
}

func TestQuaternionRoundTrip(t *testing.T) {
	poses := []Pose{
		{Roll: 10, Pitch: 20, Yaw: 30},
		{Roll: -45, Pitch: 5, Yaw: 170},
		{Roll: 179, Pitch: -60, Yaw: -90},
	}
	for _, want := range poses {
		got := FromQuaternion(ToQuaternion(want))
		if !near(got.Roll, want.Roll, 1e-6) || !near(got.Pitch, want.Pitch, 1e-6) || !near(got.Yaw, want.Yaw, 1e-6) {
			t.Fatalf("round trip %+v -> %+v", want, got)
		}
	}
}

func TestFromQuaternionPitchClamp(t *testing.T) {
	// Slightly denormalized quaternion for +90° pitch.
	p := FromQuaternion([4]float64{0, 0.7072, 0, 0.7072})
	if math.IsNaN(p.Pitch) || !near(p.Pitch, 90, 1e-6) {
		t.Fatalf("pitch=%v", p.Pitch)
	}
}

func TestComputePoseFromAccel(t *testing.T) {
	p := ComputePoseFromAccel(0, 0, 9.81)
	if p != (Pose{}) {
		t.Fatalf("level pose=%+v", p)
	}
	p = ComputePoseFromAccel(0, 9.81, 0)
	if !near(p.Roll, 90, 1e-9) {
		t.Fatalf("roll=%v", p.Roll)
	}
}

func TestMockSourceClock(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := base
	src := NewMockSourceClock(func() time.Time { return now })

	p, err := src.Next()
	if err != nil {
		t.Fatalf("Next err=%v", err)
	}
	if p.Roll != 0 || p.Pitch != 15 || p.Yaw != 0 {
		t.Fatalf("pose at start=%+v", p)
	}

	now = base.Add(2 * time.Second)
	p, _ = src.Next()
	if !near(p.Yaw, 60, 1e-9) {
		t.Fatalf("yaw after 2s=%v", p.Yaw)
	}
}
