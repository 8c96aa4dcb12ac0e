package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shtp_hub/internal/capture"
	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// replayLine is one decoded frame in the replay output.
type replayLine struct {
	Frame   int         `json:"frame"`
	Channel string      `json:"channel,omitempty"`
	Packet  string      `json:"packet,omitempty"`
	Error   string      `json:"error,omitempty"`
	Sample  *imu.Sample `json:"sample,omitempty"`
}

type replayStats struct {
	Frames  int
	Decoded int
	Errors  int
	Idle    int
}

// replayFrames feeds frames through a driver and writes one JSON line per
// received frame. Sensor batches are folded into a running sample.
func replayFrames(frames [][]byte, w io.Writer) (replayStats, error) {
	var (
		stats  replayStats
		sample = imu.Sample{Source: "replay"}
		enc    = json.NewEncoder(w)
		driver = shtp.NewDriver(capture.NewReplay(frames))
	)

	for {
		pkt, err := driver.ReceivePacket()
		// The driver reports a stream ending inside a frame as
		// io.ErrUnexpectedEOF, which falls through to the error case.
		switch {
		case errors.Is(err, io.EOF):
			return stats, nil
		case errors.Is(err, shtp.ErrNoDataAvailable):
			stats.Idle++
			continue
		}

		stats.Frames++
		line := replayLine{Frame: stats.Frames}
		if frame := driver.LastFrame(); len(frame) >= shtp.HeaderLength {
			line.Channel = shtp.DecodeHeader(frame).Channel.String()
		}

		switch {
		case errors.Is(err, shtp.ErrParse), errors.Is(err, shtp.ErrUnknownChannel):
			stats.Errors++
			line.Error = err.Error()
		case err != nil:
			return stats, err
		default:
			stats.Decoded++
			line.Packet = fmt.Sprint(pkt)
			if sr, ok := pkt.(shtp.SensorReportsPacket); ok {
				sample.Apply(time.Time{}, sr.Reports)
				snap := sample
				line.Sample = &snap
			}
		}

		if err := enc.Encode(line); err != nil {
			return stats, fmt.Errorf("write replay output: %w", err)
		}
	}
}

// RunReplay decodes a capture file and prints the packets as JSON lines.
func RunReplay(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	frames, err := capture.ReadFrames(f)
	if err != nil {
		return err
	}
	log.Printf("replay: %d frames from %s", len(frames), path)

	stats, err := replayFrames(frames, w)
	if err != nil {
		return err
	}
	log.Printf("replay: %d frames, %d decoded, %d errors, %d empty", stats.Frames, stats.Decoded, stats.Errors, stats.Idle)
	return nil
}
