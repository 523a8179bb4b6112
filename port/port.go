// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package port

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/stm32/mmio"
	"periph.io/x/stm32/rcc"
)

// Mode is the MODER value of a pin.
type Mode uint8

// Pin modes.
const (
	Input Mode = iota
	Output
	AltFunc
	Analog
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "In"
	case Output:
		return "Out"
	case AltFunc:
		return "AltFunc"
	case Analog:
		return "Analog"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Speed is the OSPEEDR value of a pin.
type Speed uint8

// Output speeds.
const (
	Low Speed = iota
	Medium
	Fast
	High
)

// OutputType is the OTYPER value of a pin.
type OutputType uint8

// Output types.
const (
	PushPull OutputType = iota
	OpenDrain
)

// Config is the configuration of one pin.
type Config struct {
	Pin        int       // 0 to 15
	Mode       Mode      //
	Speed      Speed     // only meaningful for Output and AltFunc
	Pull       gpio.Pull // gpio.PullNoChange leaves PUPDR untouched
	OutputType OutputType
	AltFunc    uint8 // 0 to 15, only meaningful for AltFunc
}

// Regs is a GPIO port register block.
type Regs struct {
	MODER   mmio.Register
	OTYPER  mmio.Register
	OSPEEDR mmio.Register
	PUPDR   mmio.Register
	IDR     mmio.Register
	ODR     mmio.Register
	BSRR    mmio.Register
	AFRL    mmio.Register
	AFRH    mmio.Register
}

// NewRegs returns the memory mapped register block at base.
func NewRegs(base uintptr) *Regs {
	return &Regs{
		MODER:   mmio.Reg32(base + 0x00),
		OTYPER:  mmio.Reg32(base + 0x04),
		OSPEEDR: mmio.Reg32(base + 0x08),
		PUPDR:   mmio.Reg32(base + 0x0C),
		IDR:     mmio.Reg32(base + 0x10),
		ODR:     mmio.Reg32(base + 0x14),
		BSRR:    mmio.Reg32(base + 0x18),
		AFRL:    mmio.Reg32(base + 0x20),
		AFRH:    mmio.Reg32(base + 0x24),
	}
}

// Clock is the part of the clock controller a port needs.
type Clock interface {
	Enable(p rcc.Peripheral, on bool)
	Reset(p rcc.Peripheral)
}

// Port is one GPIO port.
type Port struct {
	id   rcc.Peripheral
	r    *Regs
	clk  Clock
	pins [16]Pin
}

// New returns a port identified by its clock gate id.
func New(id rcc.Peripheral, r *Regs, clk Clock) *Port {
	p := &Port{id: id, r: r, clk: clk}
	letter := strings.TrimPrefix(id.Name, "GPIO")
	for i := range p.pins {
		p.pins[i] = Pin{name: fmt.Sprintf("P%s%d", letter, i), num: i, p: p}
	}
	return p
}

func (p *Port) String() string {
	return p.id.Name
}

// EnableClock gates the port clock.
func (p *Port) EnableClock(on bool) {
	p.clk.Enable(p.id, on)
}

// Configure enables the port clock and programs one pin.
func (p *Port) Configure(c Config) error {
	if c.Pin < 0 || c.Pin > 15 {
		return fmt.Errorf("port: invalid pin %d", c.Pin)
	}
	if c.Mode > Analog {
		return fmt.Errorf("port: invalid mode %s", c.Mode)
	}
	if c.AltFunc > 15 {
		return fmt.Errorf("port: invalid alternate function %d", c.AltFunc)
	}
	p.clk.Enable(p.id, true)
	pos2 := uint8(2 * c.Pin)
	if c.Pull != gpio.PullNoChange {
		v, err := pupd(c.Pull)
		if err != nil {
			return err
		}
		mmio.ReplaceBits(p.r.PUPDR, v, 0x3, pos2)
	}
	if c.Mode == Output || c.Mode == AltFunc {
		mmio.ReplaceBits(p.r.OSPEEDR, uint32(c.Speed), 0x3, pos2)
		mmio.ReplaceBits(p.r.OTYPER, uint32(c.OutputType), 0x1, uint8(c.Pin))
	}
	if c.Mode == AltFunc {
		afr := p.r.AFRL
		if c.Pin >= 8 {
			afr = p.r.AFRH
		}
		mmio.ReplaceBits(afr, uint32(c.AltFunc), 0xF, uint8(4*(c.Pin%8)))
	}
	// Mode last, so the pin only starts driving once fully configured.
	mmio.ReplaceBits(p.r.MODER, uint32(c.Mode), 0x3, pos2)
	return nil
}

// DeInit resets all the port registers to their power on value.
func (p *Port) DeInit() {
	p.clk.Reset(p.id)
}

// ReadPin returns the input level of pin n.
func (p *Port) ReadPin(n int) gpio.Level {
	return gpio.Level(mmio.HasBits(p.r.IDR, 1<<uint(n&0xF)))
}

// ReadPort returns the input levels of all pins.
func (p *Port) ReadPort() uint16 {
	return uint16(p.r.IDR.Get())
}

// WritePin sets the output level of pin n.
//
// It uses BSRR so it doesn't race with writes to other pins of the port.
func (p *Port) WritePin(n int, l gpio.Level) {
	n &= 0xF
	if l {
		p.r.BSRR.Set(1 << uint(n))
	} else {
		p.r.BSRR.Set(1 << uint(n+16))
	}
}

// WritePort sets the output levels of all pins.
func (p *Port) WritePort(v uint16) {
	p.r.ODR.Set(uint32(v))
}

// Toggle inverts the output level of pin n.
func (p *Port) Toggle(n int) {
	p.r.ODR.Set(p.r.ODR.Get() ^ 1<<uint(n&0xF))
}

// Pin returns pin n, which must be between 0 and 15.
func (p *Port) Pin(n int) *Pin {
	return &p.pins[n]
}

// ConfigureI2C places scl and sda in open drain alternate function mode with
// the internal pull up enabled.
func ConfigureI2C(scl, sda *Pin, af uint8) error {
	for _, pin := range []*Pin{scl, sda} {
		c := Config{
			Pin:        pin.num,
			Mode:       AltFunc,
			Speed:      High,
			Pull:       gpio.PullUp,
			OutputType: OpenDrain,
			AltFunc:    af,
		}
		if err := pin.p.Configure(c); err != nil {
			return err
		}
	}
	return nil
}

//

func pupd(p gpio.Pull) (uint32, error) {
	switch p {
	case gpio.Float:
		return 0, nil
	case gpio.PullUp:
		return 1, nil
	case gpio.PullDown:
		return 2, nil
	default:
		return 0, errors.New("port: invalid pull")
	}
}
