// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package shtp

import (
	log "github.com/sirupsen/logrus"
)

const continuationFlag = 0x80

// Header is the decoded 4-byte SHTP frame header.
type Header struct {
	Length       int // header + payload, continuation bit masked off
	Continuation bool
	Channel      Channel
	Sequence     uint8
}

// ParseHeader returns the total frame length (header included) declared by b.
//
// It returns 0 when b is shorter than a header or when the declared length
// exceeds MaxCargoLength. The hub sometimes answers a read with
// [0xFF 0xFF 0xFF 0xFF]; those frames decode to 0 as well.
func ParseHeader(b []byte) int {
	if len(b) < HeaderLength {
		return 0
	}

	raw := uint16(b[0]) | uint16(b[1])<<8
	length := int(b[0]) | int(b[1]&^continuationFlag)<<8
	if length > MaxCargoLength {
		length = 0
	}

	if length == 0 && raw != 0 {
		log.Debugf("shtp: garbage header % X (raw length %d)", b[:HeaderLength], raw)
	}

	return length
}

// DecodeHeader returns all header fields of b. Length follows ParseHeader.
func DecodeHeader(b []byte) Header {
	if len(b) < HeaderLength {
		return Header{}
	}
	return Header{
		Length:       ParseHeader(b),
		Continuation: b[1]&continuationFlag != 0,
		Channel:      Channel(b[2]),
		Sequence:     b[3],
	}
}

// Encode writes h into the first HeaderLength bytes of dst.
// The continuation bit is only set when h.Continuation is true.
func (h Header) Encode(dst []byte) {
	_ = dst[HeaderLength-1]
	dst[0] = byte(h.Length)
	dst[1] = byte(h.Length>>8) &^ continuationFlag
	if h.Continuation {
		dst[1] |= continuationFlag
	}
	dst[2] = byte(h.Channel)
	dst[3] = h.Sequence
}
