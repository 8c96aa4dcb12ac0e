package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/shtp_hub/internal/capture"
)

func replayTestFrames() [][]byte {
	gravity := []byte{
		23, 0x00, 0x03, 0x07,
		0xFB, 0, 0, 0, 0,
		0x06, 0x01, 0x03, 0x00, 0x00, 0x08, // 8.0 m/s² in Q8
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	return [][]byte{
		{0x05, 0x00, 0x01, 0x00, 0x01},
		{0xFF, 0xFF, 0xFF, 0xFF},
		gravity,
		{0x06, 0x00, 0x03, 0x08, 0xFB, 0x00},
	}
}

func TestReplayFrames(t *testing.T) {
	var out bytes.Buffer
	stats, err := replayFrames(replayTestFrames(), &out)
	if err != nil {
		t.Fatalf("replayFrames err=%v", err)
	}
	if stats.Frames != 3 || stats.Decoded != 2 || stats.Errors != 1 || stats.Idle != 1 {
		t.Fatalf("stats=%+v", stats)
	}

	var lines []replayLine
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var l replayLine
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, l)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}

	if lines[0].Channel != "executable" || !strings.Contains(lines[0].Packet, "reset-complete") {
		t.Fatalf("line 0=%+v", lines[0])
	}
	if lines[1].Sample == nil || lines[1].Sample.Gravity != 8.0 || lines[1].Sample.Reports != 1 {
		t.Fatalf("line 1=%+v", lines[1])
	}
	if lines[2].Error == "" || lines[2].Sample != nil {
		t.Fatalf("line 2=%+v", lines[2])
	}
}

func TestRunReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create err=%v", err)
	}
	w := capture.NewWriter(f)
	for _, frame := range replayTestFrames() {
		if err := w.WriteFrame(time.Unix(0, 0), frame); err != nil {
			t.Fatalf("WriteFrame err=%v", err)
		}
	}
	f.Close()

	var out bytes.Buffer
	if err := RunReplay(path, &out); err != nil {
		t.Fatalf("RunReplay err=%v", err)
	}
	if n := strings.Count(out.String(), "\n"); n != 3 {
		t.Fatalf("got %d lines:\n%s", n, out.String())
	}

	if err := RunReplay(filepath.Join(t.TempDir(), "missing.jsonl"), &out); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunReplayRuntFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runt.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create err=%v", err)
	}
	w := capture.NewWriter(f)
	// a runt frame is captured with only its declared bytes
	for _, frame := range [][]byte{
		{0x02, 0x00},
		{0x06, 0x00, 0x02, 0x00, 0xF8, 0x00},
		{0x05, 0x00, 0x00, 0x00, 0x00},
	} {
		if err := w.WriteFrame(time.Unix(0, 0), frame); err != nil {
			t.Fatalf("WriteFrame err=%v", err)
		}
	}
	f.Close()

	var out bytes.Buffer
	if err := RunReplay(path, &out); err != nil {
		t.Fatalf("RunReplay err=%v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "runt frame") ||
		!strings.Contains(lines[1], "product-id-response") ||
		!strings.Contains(lines[2], "advertisement") {
		t.Fatalf("output:\n%s", out.String())
	}
}
