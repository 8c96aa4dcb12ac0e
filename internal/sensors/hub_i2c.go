// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// I2C addresses of the BNO08x sensor hub, selected by the SA0 pin.
const (
	DefaultHubAddr   uint16 = 0x4A
	AlternateHubAddr uint16 = 0x4B
)

// HubI2C is an shtp.Transport over an I2C bus.
// Each read is a single I2C read transaction; the hub restarts the pending
// frame from its header on every read.
type HubI2C struct {
	name string
	bus  i2c.BusCloser
	dev  *i2c.Dev
}

// OpenHubI2C initializes periph, opens busName ("" selects the first bus)
// and binds the hub at addr.
func OpenHubI2C(busName string, addr uint16) (*HubI2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hub: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("hub: i2c open %q: %w", busName, err)
	}

	h := NewHubI2C(bus, addr)
	h.bus = bus
	h.name = fmt.Sprintf("%s@0x%02X", bus, addr)
	return h, nil
}

// NewHubI2C binds the hub at addr on an already opened bus.
// The caller keeps ownership of bus.
func NewHubI2C(bus i2c.Bus, addr uint16) *HubI2C {
	return &HubI2C{
		name: fmt.Sprintf("0x%02X", addr),
		dev:  &i2c.Dev{Bus: bus, Addr: addr},
	}
}

// ReadExact fills buf with one I2C read.
func (h *HubI2C) ReadExact(buf []byte) error {
	if err := h.dev.Tx(nil, buf); err != nil {
		return fmt.Errorf("hub %s: i2c read %d bytes: %w", h.name, len(buf), err)
	}
	return nil
}

// WriteExact writes p in one I2C write.
func (h *HubI2C) WriteExact(p []byte) error {
	if err := h.dev.Tx(p, nil); err != nil {
		return fmt.Errorf("hub %s: i2c write %d bytes: %w", h.name, len(p), err)
	}
	return nil
}

func (h *HubI2C) String() string {
	return h.name
}

// Close releases the bus if it was opened by OpenHubI2C.
func (h *HubI2C) Close() error {
	if h.bus == nil {
		return nil
	}
	return h.bus.Close()
}
