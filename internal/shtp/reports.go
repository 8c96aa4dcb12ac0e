// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package shtp

import (
	"fmt"
	"math"
)

// Q-point exponents of the fixed-point report fields.
const (
	qMagneticField = 4
	qAcceleration  = 8
	qGyro          = 9
	qRotationAcc   = 12
	qQuaternion    = 14
)

// ReportHeader is the 4-byte prefix of every record in a report batch.
type ReportHeader struct {
	ID       uint8 `json:"id"`
	Sequence uint8 `json:"seq"`
	Status   uint8 `json:"status"`
	Delay    uint8 `json:"delay"`
}

// ReportID returns the record's report ID.
func (h ReportHeader) ReportID() uint8 { return h.ID }

// Accuracy returns the sensor accuracy encoded in status bits 1:0
// (0 unreliable, 1 low, 2 medium, 3 high).
func (h ReportHeader) Accuracy() uint8 { return h.Status & 0x03 }

// Report is one decoded record of a sensor-reports frame.
type Report interface {
	ReportID() uint8
	isReport()
}

// Acceleration is the calibrated accelerometer in m/s².
type Acceleration struct {
	ReportHeader
	Vector [3]float64 `json:"vector"`
}

// GyroCalibrated is the calibrated angular rate in rad/s.
type GyroCalibrated struct {
	ReportHeader
	Vector [3]float64 `json:"vector"`
}

// MagneticField is the calibrated magnetic field in µT.
type MagneticField struct {
	ReportHeader
	Vector [3]float64 `json:"vector"`
}

// LinearAcceleration is acceleration with gravity removed, in m/s².
type LinearAcceleration struct {
	ReportHeader
	Vector [3]float64 `json:"vector"`
}

// Rotation is the rotation vector as a unit quaternion (i, j, k, real)
// plus the hub's heading accuracy estimate in radians.
type Rotation struct {
	ReportHeader
	Quaternion [4]float64 `json:"quaternion"`
	Estimate   float64    `json:"accuracy_rad"`
}

// GameRotation is the rotation vector without magnetometer input (i, j, k, real).
type GameRotation struct {
	ReportHeader
	Quaternion [4]float64 `json:"quaternion"`
}

// Gravity is the gravity report in m/s².
type Gravity struct {
	ReportHeader
	Value float64 `json:"value"`
}

// UnknownReport marks a record whose ID we cannot size. Only its 4-byte
// header was consumed.
type UnknownReport struct {
	ID uint8 `json:"id"`
}

func (u UnknownReport) ReportID() uint8 { return u.ID }

func (Acceleration) isReport()       {}
func (GyroCalibrated) isReport()     {}
func (MagneticField) isReport()      {}
func (LinearAcceleration) isReport() {}
func (Rotation) isReport()           {}
func (GameRotation) isReport()       {}
func (Gravity) isReport()            {}
func (UnknownReport) isReport()      {}

// fieldCount returns how many 16-bit value fields follow the record header.
func fieldCount(id uint8) (int, bool) {
	switch id {
	case ReportIDAccelerometer, ReportIDGyroCalibrated, ReportIDMagFieldCalibrated, ReportIDLinearAcceleration:
		return 3, true
	case ReportIDRotationVector:
		return 5, true
	case ReportIDGameRotationVector:
		return 4, true
	case ReportIDGravity:
		return 1, true
	default:
		return 0, false
	}
}

// qToFloat scales a Q-point fixed value: raw * 2^-q.
func qToFloat(raw int16, q uint) float64 {
	return math.Ldexp(float64(raw), -int(q))
}

type reportReader struct {
	buf []byte
	pos int
}

func (r *reportReader) u8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reportReader) i16() int16 {
	v := int16(uint16(r.buf[r.pos]) | uint16(r.buf[r.pos+1])<<8)
	r.pos += 2
	return v
}

func (r *reportReader) q(q uint) float64 {
	return qToFloat(r.i16(), q)
}

func (r *reportReader) vector(q uint) [3]float64 {
	return [3]float64{r.q(q), r.q(q), r.q(q)}
}

func (r *reportReader) quaternion() [4]float64 {
	return [4]float64{r.q(qQuaternion), r.q(qQuaternion), r.q(qQuaternion), r.q(qQuaternion)}
}

// ParseSensorReports decodes a complete sensor-reports frame (header included)
// into its batch of records.
//
// The first HeaderLength+5 bytes (frame header and base timestamp) are skipped.
// Records are decoded while the cursor is below len(frame)-9. Unknown report
// IDs advance the cursor by the record header only.
func ParseSensorReports(frame []byte) (SensorReportsPacket, error) {
	cursor := HeaderLength + timestampLength
	if len(frame) < cursor {
		return SensorReportsPacket{}, fmt.Errorf("%w: %d byte frame shorter than %d byte prefix", ErrParse, len(frame), cursor)
	}

	payloadLen := len(frame) - cursor
	if payloadLen < minReportPayload {
		return SensorReportsPacket{}, fmt.Errorf("%w: report payload %d bytes (frame %d bytes)", ErrParse, payloadLen, len(frame))
	}

	r := reportReader{buf: frame, pos: cursor}
	var reports []Report

	// Batching queue
	for r.pos < payloadLen {
		if r.pos+recordHeaderLength > len(frame) {
			return SensorReportsPacket{}, fmt.Errorf("%w: record header at offset %d truncated", ErrParse, r.pos)
		}
		h := ReportHeader{
			ID:       r.u8(),
			Sequence: r.u8(),
			Status:   r.u8(),
			Delay:    r.u8(),
		}

		n, known := fieldCount(h.ID)
		if !known {
			reports = append(reports, UnknownReport{ID: h.ID})
			continue
		}
		if r.pos+2*n > len(frame) {
			return SensorReportsPacket{}, fmt.Errorf("%w: report 0x%02X at offset %d needs %d bytes, %d left",
				ErrParse, h.ID, r.pos-recordHeaderLength, 2*n, len(frame)-r.pos)
		}

		switch h.ID {
		case ReportIDAccelerometer:
			reports = append(reports, Acceleration{ReportHeader: h, Vector: r.vector(qAcceleration)})
		case ReportIDGyroCalibrated:
			reports = append(reports, GyroCalibrated{ReportHeader: h, Vector: r.vector(qGyro)})
		case ReportIDMagFieldCalibrated:
			reports = append(reports, MagneticField{ReportHeader: h, Vector: r.vector(qMagneticField)})
		case ReportIDLinearAcceleration:
			reports = append(reports, LinearAcceleration{ReportHeader: h, Vector: r.vector(qAcceleration)})
		case ReportIDRotationVector:
			quat := r.quaternion()
			reports = append(reports, Rotation{ReportHeader: h, Quaternion: quat, Estimate: r.q(qRotationAcc)})
		case ReportIDGameRotationVector:
			reports = append(reports, GameRotation{ReportHeader: h, Quaternion: r.quaternion()})
		case ReportIDGravity:
			reports = append(reports, Gravity{ReportHeader: h, Value: r.q(qAcceleration)})
		}
	}

	return SensorReportsPacket{Reports: reports}, nil
}
