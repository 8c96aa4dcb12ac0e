package imu

import (
	"time"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// Sample is the latest value of every hub report, in engineering units.
type Sample struct {
	Source string `json:"source"`
	Time   string `json:"time"`

	Accel       [3]float64 `json:"accel"`        // m/s²
	Gyro        [3]float64 `json:"gyro"`         // rad/s
	Mag         [3]float64 `json:"mag"`          // µT
	LinearAccel [3]float64 `json:"linear_accel"` // m/s²
	Gravity     float64    `json:"gravity"`      // m/s²

	Quat         [4]float64 `json:"quat"` // i, j, k, real
	QuatAccuracy float64    `json:"quat_accuracy_rad"`
	GameQuat     [4]float64 `json:"game_quat"`

	// Status accuracy bits (0-3) of the last accel/gyro/mag/rotation report
	AccelAccuracy    uint8 `json:"accel_accuracy"`
	GyroAccuracy     uint8 `json:"gyro_accuracy"`
	MagAccuracy      uint8 `json:"mag_accuracy"`
	RotationAccuracy uint8 `json:"rotation_accuracy"`

	HaveRotation bool   `json:"have_rotation"`
	Reports      uint64 `json:"reports"`
	Unknown      uint64 `json:"unknown"`
}

// Apply folds one batch of decoded reports into s.
func (s *Sample) Apply(t time.Time, reports []shtp.Report) {
	for _, r := range reports {
		switch r := r.(type) {
		case shtp.Acceleration:
			s.Accel = r.Vector
			s.AccelAccuracy = r.Accuracy()
		case shtp.GyroCalibrated:
			s.Gyro = r.Vector
			s.GyroAccuracy = r.Accuracy()
		case shtp.MagneticField:
			s.Mag = r.Vector
			s.MagAccuracy = r.Accuracy()
		case shtp.LinearAcceleration:
			s.LinearAccel = r.Vector
		case shtp.Gravity:
			s.Gravity = r.Value
		case shtp.Rotation:
			s.Quat = r.Quaternion
			s.QuatAccuracy = r.Estimate
			s.RotationAccuracy = r.Accuracy()
			s.HaveRotation = true
		case shtp.GameRotation:
			s.GameQuat = r.Quaternion
		case shtp.UnknownReport:
			s.Unknown++
			continue
		}
		s.Reports++
	}
	s.Time = t.UTC().Format(time.RFC3339Nano)
}
