package orientation

import (
	"math"
)

// Pose is the canonical representation of orientation for the app, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// FromQuaternion converts a hub rotation vector (i, j, k, real) to roll,
// pitch and yaw using the aerospace Z-Y-X convention.
func FromQuaternion(q [4]float64) Pose {
	x, y, z, w := q[0], q[1], q[2], q[3]

	rollRad := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinp := 2 * (w*y - z*x)
	// clamp: rounding can push |sinp| slightly above 1 at ±90°
	if sinp > 1 {
		sinp = 1
	} else if sinp < -1 {
		sinp = -1
	}
	pitchRad := math.Asin(sinp)

	yawRad := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
		Yaw:   yawRad * 180.0 / math.Pi,
	}
}

// ToQuaternion is the inverse of FromQuaternion.
func ToQuaternion(p Pose) [4]float64 {
	cr, sr := math.Cos(p.Roll*math.Pi/360), math.Sin(p.Roll*math.Pi/360)
	cp, sp := math.Cos(p.Pitch*math.Pi/360), math.Sin(p.Pitch*math.Pi/360)
	cy, sy := math.Cos(p.Yaw*math.Pi/360), math.Sin(p.Yaw*math.Pi/360)

	return [4]float64{
		sr*cp*cy - cr*sp*sy,
		cr*sp*cy + sr*cp*sy,
		cr*cp*sy - sr*sp*cy,
		cr*cp*cy + sr*sp*sy,
	}
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0. Used until the hub delivers a rotation vector.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
		Yaw:   0,
	}
}
