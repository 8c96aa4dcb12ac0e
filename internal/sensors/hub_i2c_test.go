package sensors

import (
	"errors"
	"testing"

	"github.com/relabs-tech/shtp_hub/internal/shtp"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestHubI2CReceiveProductID(t *testing.T) {
	frame := []byte{0x06, 0x00, 0x02, 0x05, 0xF8, 0x00}
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultHubAddr, R: frame[:shtp.HeaderLength]},
			{Addr: DefaultHubAddr, R: frame},
		},
	}
	d := shtp.NewDriver(NewHubI2C(bus, DefaultHubAddr))

	pkt, err := d.ReceivePacket()
	if err != nil {
		t.Fatalf("ReceivePacket err=%v", err)
	}
	hub, ok := pkt.(shtp.HubControlPacket)
	if !ok || hub.Kind != shtp.HubProductIDResponse {
		t.Fatalf("packet=%#v", pkt)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("playback not fully consumed: %v", err)
	}
}

func TestHubI2CSoftReset(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: AlternateHubAddr, W: []byte{0x05, 0x00, 0x01, 0x00, 0x01}},
		},
	}
	d := shtp.NewDriver(NewHubI2C(bus, AlternateHubAddr))

	if err := d.SoftReset(); err != nil {
		t.Fatalf("SoftReset err=%v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("playback not fully consumed: %v", err)
	}
}

func TestHubI2CIdle(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultHubAddr, R: []byte{0x00, 0x00, 0x00, 0x00}},
		},
	}
	d := shtp.NewDriver(NewHubI2C(bus, DefaultHubAddr))

	if _, err := d.ReceivePacket(); !errors.Is(err, shtp.ErrNoDataAvailable) {
		t.Fatalf("err=%v, want ErrNoDataAvailable", err)
	}
}

func TestHubI2CBusError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	h := NewHubI2C(bus, DefaultHubAddr)

	if err := h.ReadExact(make([]byte, 4)); err == nil {
		t.Fatalf("expected error from exhausted playback")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close on borrowed bus err=%v", err)
	}
}
