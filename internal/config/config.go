package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicSample string
	TopicPose   string
	TopicEvents string

	// Sensor hub hardware
	HubI2CBus       string // "" selects the first bus
	HubI2CAddr      uint16 // 0x4A or 0x4B
	HubResetOnStart bool

	// Report intervals in milliseconds, 0 leaves the report disabled
	ReportAccelMS        uint16
	ReportGyroMS         uint16
	ReportMagMS          uint16
	ReportLinearAccelMS  uint16
	ReportRotationMS     uint16
	ReportGravityMS      uint16
	ReportGameRotationMS uint16
	ReportMaxDelayMS     uint16 // batching delay applied to every enabled report

	// Timing
	PollIdleInterval int // milliseconds to sleep when the hub has no data

	// Capture
	CaptureFile string // record every received frame here when set

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds

	// Logging
	LogLevel string // logrus level name
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional key set to its default.
func Default() *Config {
	return &Config{
		MQTTClientIDProducer:  "shtp-hub-producer",
		MQTTClientIDConsole:   "shtp-hub-console",
		MQTTClientIDWeb:       "shtp-hub-web",
		MQTTClientIDDisplay:   "shtp-hub-display",
		TopicSample:           "inertial/hub/sample",
		TopicPose:             "inertial/hub/pose",
		TopicEvents:           "inertial/hub/events",
		HubI2CAddr:            0x4A,
		HubResetOnStart:       true,
		ReportRotationMS:      10,
		PollIdleInterval:      5,
		WebServerPort:         8080,
		DisplayUpdateInterval: 200,
		LogLevel:              "info",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseMillis(key, value string) (uint16, error) {
	ms, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(ms), nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_EVENTS":
		c.TopicEvents = value

	// Sensor hub hardware
	case "HUB_I2C_BUS":
		c.HubI2CBus = value
	case "HUB_I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid HUB_I2C_ADDR %q: %w", value, perr)
		}
		c.HubI2CAddr = uint16(addr)
	case "HUB_RESET_ON_START":
		reset, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid HUB_RESET_ON_START %q: %w", value, perr)
		}
		c.HubResetOnStart = reset

	// Report intervals
	case "REPORT_ACCEL_MS":
		c.ReportAccelMS, err = parseMillis(key, value)
	case "REPORT_GYRO_MS":
		c.ReportGyroMS, err = parseMillis(key, value)
	case "REPORT_MAG_MS":
		c.ReportMagMS, err = parseMillis(key, value)
	case "REPORT_LINEAR_ACCEL_MS":
		c.ReportLinearAccelMS, err = parseMillis(key, value)
	case "REPORT_ROTATION_MS":
		c.ReportRotationMS, err = parseMillis(key, value)
	case "REPORT_GRAVITY_MS":
		c.ReportGravityMS, err = parseMillis(key, value)
	case "REPORT_GAME_ROTATION_MS":
		c.ReportGameRotationMS, err = parseMillis(key, value)
	case "REPORT_MAX_DELAY_MS":
		c.ReportMaxDelayMS, err = parseMillis(key, value)

	// Timing
	case "POLL_IDLE_INTERVAL":
		c.PollIdleInterval, err = parseInt(key, value)

	// Capture
	case "CAPTURE_FILE":
		c.CaptureFile = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that required fields are set and ranges are sane.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.HubI2CAddr != 0x4A && c.HubI2CAddr != 0x4B {
		return fmt.Errorf("HUB_I2C_ADDR must be 0x4A or 0x4B, got 0x%02X", c.HubI2CAddr)
	}
	if c.PollIdleInterval <= 0 {
		return fmt.Errorf("POLL_IDLE_INTERVAL must be positive, got %d", c.PollIdleInterval)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	if len(c.EnabledReports()) == 0 {
		return fmt.Errorf("at least one REPORT_*_MS interval must be non-zero")
	}
	return nil
}

// ReportInterval pairs a hub report ID with its configured interval.
type ReportInterval struct {
	ID       uint8
	PeriodMS uint16
}

// EnabledReports lists the reports with a non-zero interval, by report ID.
func (c *Config) EnabledReports() []ReportInterval {
	all := []ReportInterval{
		{shtp.ReportIDAccelerometer, c.ReportAccelMS},
		{shtp.ReportIDGyroCalibrated, c.ReportGyroMS},
		{shtp.ReportIDMagFieldCalibrated, c.ReportMagMS},
		{shtp.ReportIDLinearAcceleration, c.ReportLinearAccelMS},
		{shtp.ReportIDRotationVector, c.ReportRotationMS},
		{shtp.ReportIDGravity, c.ReportGravityMS},
		{shtp.ReportIDGameRotationVector, c.ReportGameRotationMS},
	}
	var enabled []ReportInterval
	for _, r := range all {
		if r.PeriodMS > 0 {
			enabled = append(enabled, r)
		}
	}
	return enabled
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so only the first call loads the file.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
