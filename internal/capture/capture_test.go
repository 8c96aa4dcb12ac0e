package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

func gravityFrame() []byte {
	return []byte{
		0x17, 0x00, 0x03, 0x01, // header, 23 bytes
		0xFB, 0x00, 0x00, 0x00, 0x00, // base timestamp
		0x06, 0x01, 0x00, 0x00, 0x00, 0x08, // gravity, raw 2048
		0, 0, 0, 0, 0, 0, 0, 0,
	}
}

func TestWriteReadFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	ts := time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)

	frames := [][]byte{
		{0x06, 0x00, 0x02, 0x00, 0xF8, 0x00},
		gravityFrame(),
	}
	for _, f := range frames {
		if err := w.WriteFrame(ts, f); err != nil {
			t.Fatalf("WriteFrame err=%v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], `"channel":3`) || !strings.Contains(lines[1], `"seq":1`) {
		t.Fatalf("line=%s", lines[1])
	}

	got, err := ReadFrames(&buf)
	if err != nil {
		t.Fatalf("ReadFrames err=%v", err)
	}
	if len(got) != 2 || !bytes.Equal(got[1], frames[1]) {
		t.Fatalf("frames=% X", got)
	}
}

func TestReadFramesBadHex(t *testing.T) {
	_, err := ReadFrames(strings.NewReader("\n{\"frame_hex\":\"zz\"}\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("err=%v", err)
	}
}

func TestReplayThroughDriver(t *testing.T) {
	r := NewReplay([][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0x06, 0x00, 0x02, 0x00, 0xF8, 0x00},
		gravityFrame(),
	})
	d := shtp.NewDriver(r)

	if _, err := d.ReceivePacket(); !errors.Is(err, shtp.ErrNoDataAvailable) {
		t.Fatalf("garbage frame err=%v", err)
	}

	pkt, err := d.ReceivePacket()
	if err != nil {
		t.Fatalf("ReceivePacket err=%v", err)
	}
	if p, ok := pkt.(shtp.HubControlPacket); !ok || p.Kind != shtp.HubProductIDResponse {
		t.Fatalf("packet=%#v", pkt)
	}

	pkt, err = d.ReceivePacket()
	if err != nil {
		t.Fatalf("ReceivePacket err=%v", err)
	}
	sr := pkt.(shtp.SensorReportsPacket)
	if g, ok := sr.Reports[0].(shtp.Gravity); !ok || g.Value != 8 {
		t.Fatalf("reports=%#v", sr.Reports)
	}

	if r.Remaining() != 0 {
		t.Fatalf("remaining=%d", r.Remaining())
	}
	if _, err := d.ReceivePacket(); !errors.Is(err, io.EOF) {
		t.Fatalf("err=%v, want io.EOF", err)
	}
}

// decodeAll runs frames through a driver until the replay is exhausted and
// records every frame it received to w.
func decodeAll(t *testing.T, r *Replay, w *Writer) []string {
	t.Helper()
	d := shtp.NewDriver(r)
	var out []string
	for {
		pkt, err := d.ReceivePacket()
		switch {
		case errors.Is(err, io.EOF):
			return out
		case errors.Is(err, shtp.ErrNoDataAvailable):
			continue
		}
		if w != nil {
			if werr := w.WriteFrame(time.Unix(0, 0), d.LastFrame()); werr != nil {
				t.Fatalf("WriteFrame err=%v", werr)
			}
		}
		switch {
		case errors.Is(err, shtp.ErrParse):
			out = append(out, "parse error")
		case err != nil:
			t.Fatalf("ReceivePacket err=%v", err)
		default:
			out = append(out, fmt.Sprint(pkt))
		}
	}
}

func TestCaptureReplayRuntFrame(t *testing.T) {
	live := NewReplay([][]byte{
		{0x02, 0x00, 0x02, 0x00},
		{0x06, 0x00, 0x02, 0x00, 0xF8, 0x00},
		{0x05, 0x00, 0x00, 0x00, 0x00},
	})
	var buf bytes.Buffer
	want := decodeAll(t, live, NewWriter(&buf))
	if len(want) != 3 || want[0] != "parse error" {
		t.Fatalf("live=%q", want)
	}

	frames, err := ReadFrames(&buf)
	if err != nil {
		t.Fatalf("ReadFrames err=%v", err)
	}
	if len(frames[0]) != 2 {
		t.Fatalf("runt recorded as % X", frames[0])
	}

	got := decodeAll(t, NewReplay(frames), nil)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("replay=%q, want %q", got, want)
	}
}
