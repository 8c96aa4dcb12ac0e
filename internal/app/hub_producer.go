// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shtp_hub/internal/capture"
	"github.com/relabs-tech/shtp_hub/internal/config"
	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/orientation"
	"github.com/relabs-tech/shtp_hub/internal/sensors"
	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// hubSession drives one sensor hub: it configures the reports, polls frames
// and publishes the folded sample, pose and control events.
type hubSession struct {
	name    string
	cfg     *config.Config
	driver  *shtp.Driver
	pub     publisher
	capture *capture.Writer

	sample imu.Sample
	pose   orientation.Pose

	frames     uint64
	idle       uint64
	decodeErrs uint64
}

func newHubSession(name string, cfg *config.Config, t shtp.Transport, pub publisher) *hubSession {
	return &hubSession{
		name:   name,
		cfg:    cfg,
		driver: shtp.NewDriver(t),
		pub:    pub,
		sample: imu.Sample{Source: name},
	}
}

// start resets the hub, or enables the reports right away when reset on
// start is disabled. After a reset the reports are enabled once the hub
// announces reset-complete.
func (s *hubSession) start() error {
	if s.cfg.HubResetOnStart {
		log.Printf("hub %s: soft reset", s.name)
		if err := s.driver.SoftReset(); err != nil {
			return fmt.Errorf("hub %s: soft reset: %w", s.name, err)
		}
		return nil
	}
	return s.enableReports()
}

func (s *hubSession) enableReports() error {
	if err := s.driver.RequestProductID(); err != nil {
		return fmt.Errorf("hub %s: request product ID: %w", s.name, err)
	}
	for _, r := range s.cfg.EnabledReports() {
		if err := s.driver.EnableReport(r.ID, r.PeriodMS, s.cfg.ReportMaxDelayMS); err != nil {
			return fmt.Errorf("hub %s: enable report 0x%02X: %w", s.name, r.ID, err)
		}
		log.Printf("hub %s: enabled report 0x%02X every %d ms (max delay %d ms)",
			s.name, r.ID, r.PeriodMS, s.cfg.ReportMaxDelayMS)
	}
	return nil
}

// poll reads one frame. It returns shtp.ErrNoDataAvailable when the hub is
// idle and transport errors as is; decode errors are logged and dropped.
func (s *hubSession) poll(now time.Time) error {
	pkt, err := s.driver.ReceivePacket()
	if errors.Is(err, shtp.ErrNoDataAvailable) {
		s.idle++
		return err
	}

	if frame := s.driver.LastFrame(); s.capture != nil && len(frame) > 0 {
		if cerr := s.capture.WriteFrame(now, frame); cerr != nil {
			log.Printf("hub %s: capture write error: %v", s.name, cerr)
		}
	}

	switch {
	case errors.Is(err, shtp.ErrParse), errors.Is(err, shtp.ErrUnknownChannel):
		s.decodeErrs++
		log.Warnf("hub %s: dropped frame: %v", s.name, err)
		return nil
	case err != nil:
		return err
	}
	s.frames++

	return s.handle(now, pkt)
}

func (s *hubSession) handle(now time.Time, pkt shtp.Packet) error {
	if sr, ok := pkt.(shtp.SensorReportsPacket); ok {
		s.sample.Apply(now, sr.Reports)
		if s.sample.HaveRotation {
			s.pose = orientation.FromQuaternion(s.sample.Quat)
		} else {
			s.pose = orientation.ComputePoseFromAccel(s.sample.Accel[0], s.sample.Accel[1], s.sample.Accel[2])
		}

		if err := s.pub.Publish(s.cfg.TopicSample, s.sample); err != nil {
			log.Printf("hub %s: %v", s.name, err)
		}
		if err := s.pub.Publish(s.cfg.TopicPose, s.pose); err != nil {
			log.Printf("hub %s: %v", s.name, err)
		}
		log.Debugf("hub %s: %d reports | pose R=%.2f P=%.2f Y=%.2f",
			s.name, len(sr.Reports), s.pose.Roll, s.pose.Pitch, s.pose.Yaw)
		return nil
	}

	ev, ok := eventFromPacket(now, pkt)
	if !ok {
		return nil
	}
	log.Printf("hub %s: %s", s.name, pkt)
	if err := s.pub.Publish(s.cfg.TopicEvents, ev); err != nil {
		log.Printf("hub %s: %v", s.name, err)
	}

	// The hub forgets its feature configuration on every reset.
	if p, ok := pkt.(shtp.ExecutablePacket); ok && p.Kind == shtp.ExecResetComplete {
		return s.enableReports()
	}
	return nil
}

// RunHubProducer reads the sensor hub (or a mock hub) and publishes its
// measurements to MQTT. Read errors are logged and the loop keeps polling.
func RunHubProducer(mock bool) error {
	log.Println("starting shtp-hub producer")

	cfg := config.Get()

	var (
		transport shtp.Transport
		name      string
	)
	if mock {
		log.Println("using mock sensor hub")
		transport = sensors.NewMockHub(orientation.NewMockSource())
		name = "mock"
	} else {
		hub, err := sensors.OpenHubI2C(cfg.HubI2CBus, cfg.HubI2CAddr)
		if err != nil {
			return err
		}
		defer hub.Close()
		transport = hub
		name = hub.String()
		log.Printf("hub %s: opened", name)
	}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	session := newHubSession(name, cfg, transport, mqttPublisher{client: client})

	if cfg.CaptureFile != "" {
		f, err := os.OpenFile(cfg.CaptureFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer f.Close()
		session.capture = capture.NewWriter(f)
		log.Printf("recording frames to %s", cfg.CaptureFile)
	}

	if err := session.start(); err != nil {
		return err
	}

	idleSleep := time.Duration(cfg.PollIdleInterval) * time.Millisecond
	stats := time.NewTicker(10 * time.Second)
	defer stats.Stop()

	for {
		select {
		case <-stats.C:
			log.Printf("hub %s: %d frames, %d idle polls, %d dropped", name, session.frames, session.idle, session.decodeErrs)
		default:
		}

		err := session.poll(time.Now())
		if errors.Is(err, shtp.ErrNoDataAvailable) {
			time.Sleep(idleSleep)
			continue
		}
		if err != nil {
			log.Printf("hub %s: read error: %v", name, err)
			time.Sleep(idleSleep)
		}
	}
}
