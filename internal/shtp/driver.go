// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package shtp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Transport is the byte-level bus used by the Driver.
// Both calls block until the whole buffer was transferred or fail.
type Transport interface {
	ReadExact(buf []byte) error
	WriteExact(p []byte) error
}

// Driver speaks SHTP to a sensor hub over a Transport.
//
// The receive and send buffers are allocated once and reused for every frame.
// A Driver is not safe for concurrent use.
type Driver struct {
	transport Transport
	recvBuf   []byte
	sendBuf   []byte
	seq       [NumChannels]uint8
	lastLen   int
}

// NewDriver returns a Driver using t. All sequence counters start at 0.
func NewDriver(t Transport) *Driver {
	return &Driver{
		transport: t,
		recvBuf:   make([]byte, recvBufferLength),
		sendBuf:   make([]byte, sendBufferLength),
	}
}

// Sequence returns the sequence number the next frame sent on ch will carry.
// It panics if ch is not a valid channel.
func (d *Driver) Sequence(ch Channel) uint8 {
	if int(ch) >= NumChannels {
		panic(fmt.Sprintf("shtp: sequence of invalid channel %d", ch))
	}
	return d.seq[ch]
}

// LastFrame returns the bytes of the last frame read by ReceivePacket.
// The slice aliases the receive buffer and is only valid until the next call.
func (d *Driver) LastFrame() []byte {
	return d.recvBuf[:d.lastLen]
}

// ReceivePacket reads and decodes one frame.
//
// It returns ErrNoDataAvailable when the hub has nothing queued. Frames on
// channels we do not decode are consumed and reported as ErrUnknownChannel.
func (d *Driver) ReceivePacket() (Packet, error) {
	d.lastLen = 0
	if err := d.transport.ReadExact(d.recvBuf[:HeaderLength]); err != nil {
		return nil, fmt.Errorf("shtp: transport read header: %w", err)
	}

	length := ParseHeader(d.recvBuf[:HeaderLength])
	if length == 0 {
		return nil, ErrNoDataAvailable
	}

	// The hub restarts the frame on every read, header included.
	if err := d.transport.ReadExact(d.recvBuf[:length]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("shtp: transport read frame: %w", err)
	}
	d.lastLen = length

	return d.processPacket(d.recvBuf[:length])
}

func (d *Driver) processPacket(msg []byte) (Packet, error) {
	if len(msg) < HeaderLength {
		return nil, fmt.Errorf("%w: runt frame of %d bytes", ErrParse, len(msg))
	}

	channel := Channel(msg[2])
	var reportID uint8
	if len(msg) > HeaderLength {
		reportID = msg[HeaderLength]
	}

	switch channel {
	case ChannelCommand:
		return decodeCommand(reportID), nil
	case ChannelExecutable:
		return decodeExecutable(reportID), nil
	case ChannelHubControl:
		return decodeHubControl(reportID), nil
	case ChannelSensorReports:
		pkt, err := ParseSensorReports(msg)
		if err != nil {
			return nil, err
		}
		return pkt, nil
	default:
		log.Debugf("shtp: unhandled channel %d: % X", channel, msg)
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
}

// SendPacket frames body for channel ch and writes it in a single transfer.
//
// It panics if ch is not a valid channel or the frame does not fit the send
// buffer.
func (d *Driver) SendPacket(ch Channel, body []byte) error {
	if int(ch) >= NumChannels {
		panic(fmt.Sprintf("shtp: send on invalid channel %d", ch))
	}
	length := HeaderLength + len(body)
	if length > len(d.sendBuf) {
		panic(fmt.Sprintf("shtp: %d byte frame exceeds %d byte send buffer", length, len(d.sendBuf)))
	}

	Header{Length: length, Channel: ch, Sequence: d.seq[ch]}.Encode(d.sendBuf)
	d.seq[ch]++
	copy(d.sendBuf[HeaderLength:length], body)

	if err := d.transport.WriteExact(d.sendBuf[:length]); err != nil {
		return fmt.Errorf("shtp: transport write: %w", err)
	}
	return nil
}

// EnableReport asks the hub to emit report id every periodMS milliseconds,
// batching for at most maxDelayMS. The hub's answer arrives later as a
// hub-control packet and is not tied to this call.
func (d *Driver) EnableReport(id uint8, periodMS, maxDelayMS uint16) error {
	intervalUS := uint32(periodMS) * 1000
	delayUS := uint32(maxDelayMS) * 1000

	var cmd [setFeatureCmdLength]byte
	cmd[0] = shubSetFeatureCmd
	cmd[1] = id
	// 2: feature flags, 3-4: change sensitivity
	binary.LittleEndian.PutUint32(cmd[5:9], intervalUS)
	binary.LittleEndian.PutUint32(cmd[9:13], delayUS)
	// 13-16: sensor-specific configuration

	return d.SendPacket(ChannelHubControl, cmd[:])
}

// SoftReset sends the reset command on the executable channel.
func (d *Driver) SoftReset() error {
	return d.SendPacket(ChannelExecutable, []byte{execCmdReset})
}

// RequestProductID asks the hub for its product ID. The answer arrives as a
// HubProductIDResponse packet.
func (d *Driver) RequestProductID() error {
	return d.SendPacket(ChannelHubControl, []byte{shubProdIDReq, 0x00})
}
