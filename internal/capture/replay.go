package capture

import (
	"io"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// Replay is an shtp.Transport that serves recorded frames with I2C read
// semantics: every read starts at the beginning of the pending frame, which
// is released after its second read (or its first, if the header decodes to
// length 0). Frames shorter than a header are zero-padded. Once all frames
// are served, reads return io.EOF.
//
// Writes are counted and dropped.
type Replay struct {
	frames [][]byte
	served bool
	Writes int
}

func NewReplay(frames [][]byte) *Replay {
	return &Replay{frames: frames}
}

func (r *Replay) ReadExact(buf []byte) error {
	if len(r.frames) == 0 {
		return io.EOF
	}

	for i := range buf {
		buf[i] = 0
	}
	copy(buf, r.frames[0])

	// A runt frame is recorded with fewer bytes than a header; the bus
	// reads it zero-padded, and so does the driver.
	var hdr [shtp.HeaderLength]byte
	copy(hdr[:], r.frames[0])

	if r.served || shtp.ParseHeader(hdr[:]) == 0 {
		r.frames = r.frames[1:]
		r.served = false
		return nil
	}
	r.served = true
	return nil
}

func (r *Replay) WriteExact(p []byte) error {
	r.Writes++
	return nil
}

// Remaining returns the number of frames not yet fully served.
func (r *Replay) Remaining() int {
	return len(r.frames)
}
