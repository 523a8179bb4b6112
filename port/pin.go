// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package port

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/stm32/mmio"
)

// Pin is a single pin of a Port.
type Pin struct {
	name string
	num  int
	p    *Port
}

// String implements conn.Resource.
func (p *Pin) String() string {
	return p.name
}

// Halt implements conn.Resource.
func (p *Pin) Halt() error {
	return nil
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return p.num
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	switch m := p.mode(); m {
	case AltFunc:
		afr := p.p.r.AFRL
		if p.num >= 8 {
			afr = p.p.r.AFRH
		}
		return fmt.Sprintf("AF%d", mmio.Field(afr, 0xF, uint8(4*(p.num%8))))
	default:
		return m.String()
	}
}

// In implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, e gpio.Edge) error {
	if e != gpio.NoEdge {
		return errors.New("port: edge detection is not supported")
	}
	return p.p.Configure(Config{Pin: p.num, Mode: Input, Pull: pull})
}

// Read implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	return p.p.ReadPin(p.num)
}

// WaitForEdge implements gpio.PinIn.
func (p *Pin) WaitForEdge(t time.Duration) bool {
	return false
}

// DefaultPull implements gpio.PinIn.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.Float
}

// Pull implements gpio.PinIn.
func (p *Pin) Pull() gpio.Pull {
	switch mmio.Field(p.p.r.PUPDR, 0x3, uint8(2*p.num)) {
	case 1:
		return gpio.PullUp
	case 2:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

// Out implements gpio.PinOut.
//
// The pin is switched to push-pull output mode if it is not already an
// output.
func (p *Pin) Out(l gpio.Level) error {
	p.p.WritePin(p.num, l)
	if p.mode() != Output {
		return p.p.Configure(Config{Pin: p.num, Mode: Output, Pull: gpio.PullNoChange})
	}
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(d gpio.Duty, f physic.Frequency) error {
	return errors.New("port: PWM is not supported")
}

func (p *Pin) mode() Mode {
	return Mode(mmio.Field(p.p.r.MODER, 0x3, uint8(2*p.num)))
}

var _ gpio.PinIO = &Pin{}
