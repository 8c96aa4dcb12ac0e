package imu

import (
	"testing"
	"time"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

func TestSampleApply(t *testing.T) {
	var s Sample
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s.Apply(now, []shtp.Report{
		shtp.Acceleration{ReportHeader: shtp.ReportHeader{ID: shtp.ReportIDAccelerometer, Status: 2}, Vector: [3]float64{0, 0, 9.8}},
		shtp.Rotation{ReportHeader: shtp.ReportHeader{ID: shtp.ReportIDRotationVector, Status: 3}, Quaternion: [4]float64{0, 0, 0, 1}, Estimate: 0.1},
		shtp.UnknownReport{ID: 0x7A},
		shtp.Gravity{Value: 9.81},
	})

	if s.Accel != [3]float64{0, 0, 9.8} || s.AccelAccuracy != 2 {
		t.Fatalf("accel=%v accuracy=%d", s.Accel, s.AccelAccuracy)
	}
	if !s.HaveRotation || s.Quat[3] != 1 || s.RotationAccuracy != 3 || s.QuatAccuracy != 0.1 {
		t.Fatalf("rotation not applied: %+v", s)
	}
	if s.Gravity != 9.81 {
		t.Fatalf("gravity=%v", s.Gravity)
	}
	if s.Reports != 3 || s.Unknown != 1 {
		t.Fatalf("reports=%d unknown=%d", s.Reports, s.Unknown)
	}
	if s.Time != "2026-01-02T03:04:05Z" {
		t.Fatalf("time=%q", s.Time)
	}

	// Later reports overwrite only their own fields.
	s.Apply(now, []shtp.Report{shtp.GyroCalibrated{Vector: [3]float64{1, 2, 3}}})
	if s.Accel != [3]float64{0, 0, 9.8} || s.Gyro != [3]float64{1, 2, 3} {
		t.Fatalf("sample=%+v", s)
	}
}
