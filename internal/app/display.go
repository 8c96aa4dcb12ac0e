package app

import (
	"fmt"
	"image"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/shtp_hub/internal/config"
	"github.com/relabs-tech/shtp_hub/internal/imu"
	"github.com/relabs-tech/shtp_hub/internal/orientation"
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	sample     imu.Sample
	haveSample bool
	pose       orientation.Pose
	havePose   bool
}

func (d *DisplayData) setSample(s imu.Sample) {
	d.mu.Lock()
	d.sample, d.haveSample = s, true
	d.mu.Unlock()
}

func (d *DisplayData) setPose(p orientation.Pose) {
	d.mu.Lock()
	d.pose, d.havePose = p, true
	d.mu.Unlock()
}

// screen is a blank 128x64 frame with a text drawer.
type screen struct {
	img    *image1bit.VerticalLSB
	drawer *font.Drawer
}

func newScreen() *screen {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	return &screen{
		img: img,
		drawer: &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{image1bit.On},
			Face: basicfont.Face7x13,
		},
	}
}

func (s *screen) line(x, y int, text string) {
	s.drawer.Dot = fixed.P(x, y)
	s.drawer.DrawString(text)
}

func renderSplash() *image1bit.VerticalLSB {
	s := newScreen()
	s.line(20, 26, "SHTP Hub")
	s.line(5, 43, "Waiting for")
	s.line(25, 56, "reports")
	return s.img
}

// renderPose draws the pose and the rotation accuracy of the last sample.
func renderPose(pose orientation.Pose, havePose bool, sample imu.Sample, haveSample bool) *image1bit.VerticalLSB {
	s := newScreen()
	if !havePose {
		s.line(0, 26, "Orientation")
		s.line(0, 39, "Waiting...")
		return s.img
	}

	s.line(0, 13, fmt.Sprintf("R: %6.1f", pose.Roll))
	s.line(0, 26, fmt.Sprintf("P: %6.1f", pose.Pitch))
	s.line(0, 39, fmt.Sprintf("Y: %6.1f", pose.Yaw))
	if haveSample {
		s.line(0, 52, fmt.Sprintf("acc:%d g:%5.2f", sample.RotationAccuracy, sample.Gravity))
	}
	return s.img
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus %q: %w", cfg.DisplayI2CBus, err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized on %s", bus)

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, cfg.TopicSample, data.setSample); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicPose, data.setPose); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		img := renderPose(data.pose, data.havePose, data.sample, data.haveSample)
		data.mu.RUnlock()

		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}
