// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package capture records received SHTP frames as JSON Lines and replays
// them through the driver as if they came from the bus.
package capture

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// Record is one line of a capture file.
type Record struct {
	TS       string `json:"ts"`
	Channel  uint8  `json:"channel"`
	Seq      uint8  `json:"seq"`
	FrameHex string `json:"frame_hex"`
}

// Writer appends frames to a capture stream.
type Writer struct {
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// WriteFrame records a complete frame, header included.
func (w *Writer) WriteFrame(t time.Time, frame []byte) error {
	h := shtp.DecodeHeader(frame)
	return w.enc.Encode(Record{
		TS:       t.UTC().Format(time.RFC3339Nano),
		Channel:  uint8(h.Channel),
		Seq:      h.Sequence,
		FrameHex: hex.EncodeToString(frame),
	})
}

// ReadFrames loads every frame of a capture stream. Blank lines are skipped.
func ReadFrames(r io.Reader) ([][]byte, error) {
	var frames [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*shtp.MaxCargoLength+1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("capture line %d: %w", lineNum, err)
		}
		frame, err := hex.DecodeString(rec.FrameHex)
		if err != nil {
			return nil, fmt.Errorf("capture line %d: frame_hex: %w", lineNum, err)
		}
		frames = append(frames, frame)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading capture: %w", err)
	}
	return frames, nil
}
