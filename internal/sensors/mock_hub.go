// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"sync"

	"github.com/relabs-tech/shtp_hub/internal/orientation"
	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

const standardGravity = 9.80665

// MockHub is an shtp.Transport that behaves like a sensor hub on I2C:
// it answers reset, product ID and set-feature commands and produces
// sensor-report frames for the enabled reports from an orientation.Source.
type MockHub struct {
	mu        sync.Mutex
	src       orientation.Source
	pending   [][]byte
	served    bool
	seq       [shtp.NumChannels]uint8
	enabled   map[uint8]bool
	reportSeq uint8
}

// NewMockHub returns a hub whose rotation follows src.
func NewMockHub(src orientation.Source) *MockHub {
	return &MockHub{
		src:     src,
		enabled: make(map[uint8]bool),
	}
}

// WriteExact interprets a command frame sent by the driver.
func (m *MockHub) WriteExact(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := shtp.DecodeHeader(p)
	if h.Length <= shtp.HeaderLength || h.Length > len(p) {
		return nil
	}
	body := p[shtp.HeaderLength:h.Length]

	switch {
	case h.Channel == shtp.ChannelExecutable && body[0] == 0x01:
		m.enabled = make(map[uint8]bool)
		m.queue(shtp.ChannelExecutable, 0x01)
	case h.Channel == shtp.ChannelHubControl && body[0] == 0xF9:
		m.queue(shtp.ChannelHubControl, 0xF8, 0x00, 3, 2, 0, 0)
	case h.Channel == shtp.ChannelHubControl && body[0] == 0xFD && len(body) >= 2:
		m.enabled[body[1]] = true
		m.queue(shtp.ChannelHubControl, append([]byte{0xFC}, body[1:]...)...)
	}
	return nil
}

// ReadExact serves the pending frame, restarting it on every read like the
// real hub. A frame is released after its second read.
func (m *MockHub) ReadExact(buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range buf {
		buf[i] = 0
	}
	if len(m.pending) == 0 {
		frame, err := m.sensorFrame()
		if err != nil {
			return err
		}
		if frame == nil {
			return nil
		}
		m.pending = append(m.pending, frame)
	}

	copy(buf, m.pending[0])
	if m.served {
		m.pending = m.pending[1:]
		m.served = false
		return nil
	}
	m.served = true
	return nil
}

func (m *MockHub) queue(ch shtp.Channel, body ...byte) {
	frame := make([]byte, shtp.HeaderLength+len(body))
	shtp.Header{Length: len(frame), Channel: ch, Sequence: m.seq[ch]}.Encode(frame)
	m.seq[ch]++
	copy(frame[shtp.HeaderLength:], body)
	m.pending = append(m.pending, frame)
}

// sensorFrame builds one batch for the enabled reports, or nil when none is
// enabled. Short records go first so none falls past the decode bound.
func (m *MockHub) sensorFrame() ([]byte, error) {
	if len(m.enabled) == 0 {
		return nil, nil
	}
	pose, err := m.src.Next()
	if err != nil {
		return nil, err
	}
	q := orientation.ToQuaternion(pose)
	g := gravityInBody(pose)
	m.reportSeq++

	frame := make([]byte, shtp.HeaderLength, 96)
	frame = append(frame, shtp.ReportIDTimestampBase, 0, 0, 0, 0)

	add := func(id uint8, qp uint, values ...float64) {
		if !m.enabled[id] {
			return
		}
		frame = append(frame, id, m.reportSeq, 0x03, 0)
		for _, v := range values {
			raw := toQ(v, qp)
			frame = append(frame, byte(uint16(raw)), byte(uint16(raw)>>8))
		}
	}
	add(shtp.ReportIDGravity, 8, standardGravity)
	add(shtp.ReportIDAccelerometer, 8, g[0], g[1], g[2])
	add(shtp.ReportIDGyroCalibrated, 9, 0, 0, 0)
	add(shtp.ReportIDMagFieldCalibrated, 4, 22.5, 0, -41.3)
	add(shtp.ReportIDLinearAcceleration, 8, 0, 0, 0)
	add(shtp.ReportIDGameRotationVector, 14, q[0], q[1], q[2], q[3])
	add(shtp.ReportIDRotationVector, 14, q[0], q[1], q[2], q[3], 0)

	if len(frame) == shtp.HeaderLength+5 {
		return nil, nil
	}
	// keep the payload above the decoder's 14 byte floor
	for len(frame) < shtp.HeaderLength+5+14 {
		frame = append(frame, 0)
	}

	shtp.Header{Length: len(frame), Channel: shtp.ChannelSensorReports, Sequence: m.seq[shtp.ChannelSensorReports]}.Encode(frame)
	m.seq[shtp.ChannelSensorReports]++
	return frame, nil
}

func gravityInBody(p orientation.Pose) [3]float64 {
	roll := p.Roll * math.Pi / 180
	pitch := p.Pitch * math.Pi / 180
	return [3]float64{
		-standardGravity * math.Sin(pitch),
		standardGravity * math.Sin(roll) * math.Cos(pitch),
		standardGravity * math.Cos(roll) * math.Cos(pitch),
	}
}

// toQ quantizes v to a Q-point value, saturating at the int16 range.
func toQ(v float64, q uint) int16 {
	r := math.Round(math.Ldexp(v, int(q)))
	if r > math.MaxInt16 {
		return math.MaxInt16
	}
	if r < math.MinInt16 {
		return math.MinInt16
	}
	return int16(r)
}
