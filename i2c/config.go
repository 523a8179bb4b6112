// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import (
	"fmt"

	"periph.io/x/periph/conn/physic"
)

// Bus speeds.
const (
	StandardMode = 100 * physic.KiloHertz
	FastMode     = 400 * physic.KiloHertz
)

// DutyCycle is the fast mode SCL low:high ratio.
type DutyCycle uint8

// Duty cycles.
const (
	Duty2    DutyCycle = 0 // Tlow/Thigh = 2
	Duty16_9 DutyCycle = 1 // Tlow/Thigh = 16/9
)

func (d DutyCycle) String() string {
	switch d {
	case Duty2:
		return "2:1"
	case Duty16_9:
		return "16:9"
	default:
		return fmt.Sprintf("DutyCycle(%d)", uint8(d))
	}
}

// Config is the configuration applied by Init.
//
// It is copied by Init; changing it afterward requires calling Init again.
type Config struct {
	// Speed is the SCL frequency. Up to StandardMode selects standard mode,
	// up to FastMode selects fast mode.
	Speed physic.Frequency
	// OwnAddress is the 7 bits address the peripheral answers to as a slave.
	OwnAddress uint16
	// ACK enables acknowledging received bytes by default.
	ACK bool
	// Duty is only used in fast mode.
	Duty DutyCycle
}

// Timing is the content of the timing registers derived from a Config and
// the APB1 clock.
type Timing struct {
	FREQ  uint32 // CR2.FREQ, APB1 clock in MHz
	CCR   uint32 // whole CCR register, including F/S and DUTY
	TRISE uint32

	// SCL is the resulting SCL frequency. It can be lower than the requested
	// speed because of integer division; it is never higher.
	SCL physic.Frequency
}

// ComputeTiming derives the CR2.FREQ, CCR and TRISE values for c with the
// peripheral clocked at pclk.
//
// It returns ErrInvalidConfig if pclk cannot produce the requested speed.
func ComputeTiming(pclk physic.Frequency, c Config) (Timing, error) {
	if c.Speed <= 0 || c.Speed > FastMode {
		return Timing{}, fmt.Errorf("%w: speed %s; must be up to %s", ErrInvalidConfig, c.Speed, FastMode)
	}
	if c.Duty > Duty16_9 {
		return Timing{}, fmt.Errorf("%w: duty cycle %s", ErrInvalidConfig, c.Duty)
	}
	if c.OwnAddress > 0x7F {
		return Timing{}, fmt.Errorf("%w: own address %#x is not a 7 bits address", ErrInvalidConfig, c.OwnAddress)
	}
	fast := c.Speed > StandardMode
	minClk := 2 * physic.MegaHertz
	if fast {
		minClk = 4 * physic.MegaHertz
	}
	if pclk < minClk {
		return Timing{}, fmt.Errorf("%w: APB1 clock %s is below %s required for %s", ErrInvalidConfig, pclk, minClk, c.Speed)
	}
	if pclk > 50*physic.MegaHertz {
		return Timing{}, fmt.Errorf("%w: APB1 clock %s is above 50MHz", ErrInvalidConfig, pclk)
	}
	hz := int64(pclk / physic.Hertz)
	t := Timing{FREQ: uint32(hz / 1000000)}
	var div physic.Frequency
	if !fast {
		// Thigh = Tlow = CCR * Tpclk.
		div = 2
		t.CCR = ceilDiv(pclk, div*c.Speed)
		if t.CCR < 4 {
			return Timing{}, fmt.Errorf("%w: CCR %d is below 4 in standard mode", ErrInvalidConfig, t.CCR)
		}
		// Maximum rise time is 1000ns.
		t.TRISE = t.FREQ + 1
	} else {
		div = 3
		if c.Duty == Duty16_9 {
			div = 25
		}
		t.CCR = ceilDiv(pclk, div*c.Speed)
		// Maximum rise time is 300ns.
		t.TRISE = uint32(hz*3/10000000) + 1
	}
	if t.CCR > ccrMask {
		return Timing{}, fmt.Errorf("%w: CCR %d overflows", ErrInvalidConfig, t.CCR)
	}
	t.SCL = pclk / (div * physic.Frequency(t.CCR))
	if fast {
		t.CCR |= ccrFS
		if c.Duty == Duty16_9 {
			t.CCR |= ccrDUTY
		}
	}
	t.TRISE &= triseMask
	return t, nil
}

// ceilDiv rounds up so the resulting SCL never exceeds the requested speed.
func ceilDiv(a, b physic.Frequency) uint32 {
	return uint32((a + b - 1) / b)
}
