package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shtp_hub/internal/config"
	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/orientation"
)

func printSample(w io.Writer, s imu.Sample) {
	fmt.Fprintf(w,
		"[HUB ] a=(%6.2f %6.2f %6.2f) g=(%6.2f %6.2f %6.2f) m=(%6.1f %6.1f %6.1f) grav=%5.2f q=(%6.3f %6.3f %6.3f %6.3f) acc=%d\n",
		s.Accel[0], s.Accel[1], s.Accel[2],
		s.Gyro[0], s.Gyro[1], s.Gyro[2],
		s.Mag[0], s.Mag[1], s.Mag[2],
		s.Gravity,
		s.Quat[0], s.Quat[1], s.Quat[2], s.Quat[3],
		s.RotationAccuracy,
	)
}

func printPose(w io.Writer, p orientation.Pose) {
	fmt.Fprintf(w, "[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f\n", p.Roll, p.Pitch, p.Yaw)
}

func printEvent(w io.Writer, ev Event) {
	fmt.Fprintf(w, "[EVT ]  %s %s report=0x%02X\n", ev.Channel, ev.Kind, ev.ReportID)
}

// RunConsoleMQTT prints every sample, pose and control event published by
// the producer until interrupted.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, cfg.TopicSample, func(s imu.Sample) { printSample(os.Stdout, s) }); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicPose, func(p orientation.Pose) { printPose(os.Stdout, p) }); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicEvents, func(ev Event) { printEvent(os.Stdout, ev) }); err != nil {
		return err
	}
	log.Printf("console: subscribed to %s, %s, %s", cfg.TopicSample, cfg.TopicPose, cfg.TopicEvents)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
