// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shtp_hub/internal/config"
	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/orientation"
	"github.com/relabs-tech/shtp_hub/internal/sensors"
	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// printPublisher writes what would be published to MQTT as console lines.
type printPublisher struct {
	w io.Writer
}

func (p printPublisher) Publish(_ string, v interface{}) error {
	switch v := v.(type) {
	case imu.Sample:
		printSample(p.w, v)
	case orientation.Pose:
		printPose(p.w, v)
	case Event:
		printEvent(p.w, v)
	default:
		return fmt.Errorf("console: cannot print %T", v)
	}
	return nil
}

// RunLocalConsole reads the hub (or a mock hub) directly, without a broker,
// and prints every sample, pose and event.
func RunLocalConsole(mock bool) error {
	cfg := config.Get()

	var (
		transport shtp.Transport
		name      = "mock"
	)
	if mock {
		transport = sensors.NewMockHub(orientation.NewMockSource())
	} else {
		hub, err := sensors.OpenHubI2C(cfg.HubI2CBus, cfg.HubI2CAddr)
		if err != nil {
			return err
		}
		defer hub.Close()
		transport, name = hub, hub.String()
	}

	session := newHubSession(name, cfg, transport, printPublisher{w: os.Stdout})
	if err := session.start(); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.PollIdleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		session.drain(t)
	}
	return nil
}

// drainLimit bounds the frames read per tick when the hub never goes idle.
const drainLimit = 32

// drain polls until the hub is idle or drainLimit frames were read. A read
// error is logged and ends the round; the next tick polls again.
func (s *hubSession) drain(now time.Time) {
	for i := 0; i < drainLimit; i++ {
		err := s.poll(now)
		if errors.Is(err, shtp.ErrNoDataAvailable) {
			return
		}
		if err != nil {
			log.Printf("hub %s: read error: %v", s.name, err)
			return
		}
	}
}
