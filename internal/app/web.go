package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shtp_hub/internal/config"
	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// liveState holds the latest sample and pose and fans samples out to the
// WebSocket clients.
type liveState struct {
	mu         sync.RWMutex
	sample     imu.Sample
	haveSample bool
	pose       orientation.Pose
	havePose   bool

	clients map[chan imu.Sample]struct{}
}

func newLiveState() *liveState {
	return &liveState{clients: make(map[chan imu.Sample]struct{})}
}

func (s *liveState) setSample(v imu.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sample = v
	s.haveSample = true
	for ch := range s.clients {
		select {
		case ch <- v:
		default: // slow client, drop
		}
	}
}

func (s *liveState) setPose(p orientation.Pose) {
	s.mu.Lock()
	s.pose = p
	s.havePose = true
	s.mu.Unlock()
}

func (s *liveState) subscribe() chan imu.Sample {
	ch := make(chan imu.Sample, 8)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *liveState) unsubscribe(ch chan imu.Sample) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func (s *liveState) handleSample(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveSample {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, s.sample)
}

func (s *liveState) handlePose(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.havePose {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, s.pose)
}

// handleWS streams every new sample to the client until it disconnects.
func (s *liveState) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// The read side only detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.mu.RLock()
	first, have := s.sample, s.haveSample
	s.mu.RUnlock()
	if have {
		if err := conn.WriteJSON(first); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case v := <-ch:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(v); err != nil {
				log.Debugf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

func newWebMux(s *liveState, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sample", s.handleSample)
	mux.HandleFunc("/api/pose", s.handlePose)
	mux.HandleFunc("/ws", s.handleWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// RunWeb serves the latest hub sample and pose over HTTP and streams
// samples over a WebSocket.
func RunWeb() error {
	cfg := config.Get()
	state := newLiveState()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, cfg.TopicSample, state.setSample); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicPose, state.setPose); err != nil {
		return err
	}
	log.Printf("subscribed to MQTT topics %s, %s", cfg.TopicSample, cfg.TopicPose)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(state, "web"))
}
