package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/orientation"
)

func TestWebEndpointsBeforeData(t *testing.T) {
	srv := httptest.NewServer(newWebMux(newLiveState(), ""))
	defer srv.Close()

	for _, path := range []string{"/api/sample", "/api/pose"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s err=%v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("GET %s status=%d", path, resp.StatusCode)
		}
	}
}

func TestWebEndpoints(t *testing.T) {
	state := newLiveState()
	state.setSample(imu.Sample{Source: "mock", Gravity: 9.8, Reports: 3})
	state.setPose(orientation.Pose{Roll: 1, Pitch: 2, Yaw: 3})

	srv := httptest.NewServer(newWebMux(state, ""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sample")
	if err != nil {
		t.Fatalf("GET err=%v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type=%q", ct)
	}
	var s imu.Sample
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if s.Source != "mock" || s.Reports != 3 || s.Gravity != 9.8 {
		t.Fatalf("sample=%+v", s)
	}

	resp2, err := http.Get(srv.URL + "/api/pose")
	if err != nil {
		t.Fatalf("GET err=%v", err)
	}
	defer resp2.Body.Close()
	var p orientation.Pose
	if err := json.NewDecoder(resp2.Body).Decode(&p); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if p != (orientation.Pose{Roll: 1, Pitch: 2, Yaw: 3}) {
		t.Fatalf("pose=%+v", p)
	}
}

func TestWebSocketStream(t *testing.T) {
	state := newLiveState()
	state.setSample(imu.Sample{Source: "mock", Reports: 1})

	srv := httptest.NewServer(newWebMux(state, ""))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err=%v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var got imu.Sample
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read err=%v", err)
	}
	if got.Reports != 1 {
		t.Fatalf("first sample=%+v", got)
	}

	// The handler subscribed before sending the first sample.
	state.setSample(imu.Sample{Source: "mock", Reports: 2})
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read err=%v", err)
	}
	if got.Reports != 2 {
		t.Fatalf("second sample=%+v", got)
	}
}
