package sensor

import (
	"encoding/binary"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

const DefaultAddress = 0x68

// MPU6886 registers
const (
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regAccelXOutH  = 0x3B
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75

	whoAmIValue = 0x19
)

const (
	accelRange8G    = 0x10
	gyroRange2000DP = 0x18

	// LSB per g at ±8g
	accelScale8G = 4096.0
)

// MPU6886 reads acceleration from an InvenSense MPU6886 on an I2C bus. Any
// bus with a Tx method works, including periph's i2c.Bus.
type MPU6886 struct {
	bus     drivers.I2C
	Address uint16

	sleep func(time.Duration)
	buf   [6]byte
}

func NewMPU6886(bus drivers.I2C) *MPU6886 {
	return &MPU6886{bus: bus, Address: DefaultAddress, sleep: time.Sleep}
}

// Connected reports whether the device answers with the expected WHO_AM_I.
func (d *MPU6886) Connected() bool {
	var id [1]byte
	if err := d.bus.Tx(d.Address, []byte{regWhoAmI}, id[:]); err != nil {
		return false
	}
	return id[0] == whoAmIValue
}

// Configure resets the device, starts its clock and selects ±8g / 2000dps.
// An error here means the sensor is unusable.
func (d *MPU6886) Configure() error {
	steps := []struct {
		reg, val byte
		settle   time.Duration
	}{
		{regPwrMgmt1, 0x00, 10 * time.Millisecond},
		{regPwrMgmt1, 0x01 << 7, 10 * time.Millisecond}, // reset
		{regPwrMgmt1, 0x01, 10 * time.Millisecond},      // auto clock
		{regAccelConfig, accelRange8G, time.Millisecond},
		{regGyroConfig, gyroRange2000DP, time.Millisecond},
	}
	for _, s := range steps {
		if err := d.bus.Tx(d.Address, []byte{s.reg, s.val}, nil); err != nil {
			return fmt.Errorf("mpu6886: write reg 0x%02x: %w", s.reg, err)
		}
		d.sleep(s.settle)
	}
	return nil
}

// ReadAcceleration returns the current acceleration in g. Failures wrap
// ErrRead.
func (d *MPU6886) ReadAcceleration() (Acceleration, error) {
	if err := d.bus.Tx(d.Address, []byte{regAccelXOutH}, d.buf[:]); err != nil {
		return Acceleration{}, fmt.Errorf("%w: mpu6886: %v", ErrRead, err)
	}
	return Acceleration{
		X: float64(int16(binary.BigEndian.Uint16(d.buf[0:2]))) / accelScale8G,
		Y: float64(int16(binary.BigEndian.Uint16(d.buf[2:4]))) / accelScale8G,
		Z: float64(int16(binary.BigEndian.Uint16(d.buf[4:6]))) / accelScale8G,
	}, nil
}
