// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package shtp

const (
	// HeaderLength is the size of the SHTP frame header.
	HeaderLength = 4
	// MaxCargoLength is the largest declared frame length we accept.
	// Anything larger is treated as a garbage frame.
	MaxCargoLength = 32766 - HeaderLength

	// NumChannels is the number of SHTP channels with their own sequence counter.
	NumChannels = 6

	recvBufferLength = 32766
	sendBufferLength = 256

	// timestampLength is the base-timestamp region that precedes the
	// batched records on the sensor-reports channel.
	timestampLength = 5
	// minReportPayload is the smallest batch we consider valid.
	minReportPayload   = 14
	recordHeaderLength = 4
)

// Channel identifies an SHTP channel.
type Channel uint8

// The BNO08x exposes six channels; only the first four are decoded here.
const (
	ChannelCommand       Channel = 0
	ChannelExecutable    Channel = 1
	ChannelHubControl    Channel = 2
	ChannelSensorReports Channel = 3
	ChannelWakeReports   Channel = 4
	ChannelGyroRotation  Channel = 5
)

func (c Channel) String() string {
	switch c {
	case ChannelCommand:
		return "command"
	case ChannelExecutable:
		return "executable"
	case ChannelHubControl:
		return "hub-control"
	case ChannelSensorReports:
		return "sensor-reports"
	case ChannelWakeReports:
		return "wake-reports"
	case ChannelGyroRotation:
		return "gyro-rotation"
	default:
		return "unknown"
	}
}

// Command channel responses
const (
	cmdRespAdvertisement uint8 = 0x00
	cmdRespErrorList     uint8 = 0x01
)

// Executable channel
const (
	execRespResetComplete uint8 = 0x01
	execCmdReset          uint8 = 0x01
)

// Sensor hub control channel
const (
	shubCommandResp     uint8 = 0xF1
	shubProdIDReq       uint8 = 0xF9
	shubProdIDResp      uint8 = 0xF8
	shubGetFeatureResp  uint8 = 0xFC
	shubSetFeatureCmd   uint8 = 0xFD
	setFeatureCmdLength       = 17
)

// Sensor report IDs
const (
	ReportIDTimestampBase      uint8 = 0xFB
	ReportIDAccelerometer      uint8 = 0x01
	ReportIDGyroCalibrated     uint8 = 0x02
	ReportIDMagFieldCalibrated uint8 = 0x03
	ReportIDLinearAcceleration uint8 = 0x04
	ReportIDRotationVector     uint8 = 0x05
	ReportIDGravity            uint8 = 0x06
	ReportIDGameRotationVector uint8 = 0x08
)
