// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rcc

import (
	"fmt"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/stm32/mmio"
)

// Oscillator frequencies.
const (
	HSI        = 16 * physic.MegaHertz
	DefaultHSE = 8 * physic.MegaHertz
)

// Regs is the subset of the RCC register block used by the drivers.
type Regs struct {
	CR       mmio.Register
	PLLCFGR  mmio.Register
	CFGR     mmio.Register
	AHB1RSTR mmio.Register
	APB1RSTR mmio.Register
	APB2RSTR mmio.Register
	AHB1ENR  mmio.Register
	APB1ENR  mmio.Register
	APB2ENR  mmio.Register
}

// NewRegs returns the memory mapped register block at base.
func NewRegs(base uintptr) *Regs {
	return &Regs{
		CR:       mmio.Reg32(base + 0x00),
		PLLCFGR:  mmio.Reg32(base + 0x04),
		CFGR:     mmio.Reg32(base + 0x08),
		AHB1RSTR: mmio.Reg32(base + 0x10),
		APB1RSTR: mmio.Reg32(base + 0x20),
		APB2RSTR: mmio.Reg32(base + 0x24),
		AHB1ENR:  mmio.Reg32(base + 0x30),
		APB1ENR:  mmio.Reg32(base + 0x40),
		APB2ENR:  mmio.Reg32(base + 0x44),
	}
}

// Bus is the peripheral bus a peripheral clock hangs off.
type Bus uint8

// Buses.
const (
	AHB1 Bus = iota
	APB1
	APB2
)

func (b Bus) String() string {
	switch b {
	case AHB1:
		return "AHB1"
	case APB1:
		return "APB1"
	case APB2:
		return "APB2"
	default:
		return fmt.Sprintf("Bus(%d)", uint8(b))
	}
}

// Peripheral identifies the enable and reset bit of a peripheral.
type Peripheral struct {
	Name string
	Bus  Bus
	Bit  uint8
}

func (p Peripheral) String() string {
	return p.Name
}

// Peripherals with a clock gate used by the drivers.
var (
	GPIOA  = Peripheral{"GPIOA", AHB1, 0}
	GPIOB  = Peripheral{"GPIOB", AHB1, 1}
	GPIOC  = Peripheral{"GPIOC", AHB1, 2}
	GPIOD  = Peripheral{"GPIOD", AHB1, 3}
	GPIOE  = Peripheral{"GPIOE", AHB1, 4}
	GPIOF  = Peripheral{"GPIOF", AHB1, 5}
	GPIOG  = Peripheral{"GPIOG", AHB1, 6}
	GPIOH  = Peripheral{"GPIOH", AHB1, 7}
	GPIOI  = Peripheral{"GPIOI", AHB1, 8}
	I2C1   = Peripheral{"I2C1", APB1, 21}
	I2C2   = Peripheral{"I2C2", APB1, 22}
	I2C3   = Peripheral{"I2C3", APB1, 23}
	SYSCFG = Peripheral{"SYSCFG", APB2, 14}
)

// Dev is the clock controller.
type Dev struct {
	r   *Regs
	hse physic.Frequency
}

// New returns a clock controller over r.
//
// hse is the frequency of the external crystal; 0 means DefaultHSE.
func New(r *Regs, hse physic.Frequency) *Dev {
	if hse == 0 {
		hse = DefaultHSE
	}
	return &Dev{r: r, hse: hse}
}

func (d *Dev) String() string {
	return "RCC"
}

// SysClk returns the frequency of the clock selected as system clock.
//
// It returns 0 if the switch status or the PLL setup is invalid.
func (d *Dev) SysClk() physic.Frequency {
	switch mmio.Field(d.r.CFGR, 0x3, cfgrSWS) {
	case 0:
		return HSI
	case 1:
		return d.hse
	case 2:
		return d.PLLOutput()
	default:
		return 0
	}
}

// HCLK returns the AHB clock frequency.
func (d *Dev) HCLK() physic.Frequency {
	return d.SysClk() / physic.Frequency(ahbPrescaler(mmio.Field(d.r.CFGR, 0xF, cfgrHPRE)))
}

// PCLK1 returns the APB1 clock frequency.
//
// The I²C peripherals are clocked from APB1.
func (d *Dev) PCLK1() physic.Frequency {
	return d.HCLK() / physic.Frequency(apbPrescaler(mmio.Field(d.r.CFGR, 0x7, cfgrPPRE1)))
}

// PCLK2 returns the APB2 clock frequency.
func (d *Dev) PCLK2() physic.Frequency {
	return d.HCLK() / physic.Frequency(apbPrescaler(mmio.Field(d.r.CFGR, 0x7, cfgrPPRE2)))
}

// PLLOutput returns the main PLL system clock output.
//
// It returns 0 when PLLM or PLLN hold a value the hardware forbids.
func (d *Dev) PLLOutput() physic.Frequency {
	v := d.r.PLLCFGR.Get()
	in := HSI
	if v&pllcfgrSRC != 0 {
		in = d.hse
	}
	m := physic.Frequency(v & 0x3F)
	n := physic.Frequency((v >> 6) & 0x1FF)
	p := physic.Frequency(((v>>16)&0x3)+1) * 2
	if m < 2 || n < 2 {
		return 0
	}
	return in / m * n / p
}

// Enable gates the clock of p on or off.
func (d *Dev) Enable(p Peripheral, on bool) {
	r := d.enr(p.Bus)
	if on {
		mmio.SetBits(r, 1<<p.Bit)
	} else {
		mmio.ClearBits(r, 1<<p.Bit)
	}
}

// Enabled returns true if the clock of p is on.
func (d *Dev) Enabled(p Peripheral) bool {
	return mmio.HasBits(d.enr(p.Bus), 1<<p.Bit)
}

// Reset pulses the reset line of p, returning all its registers to their
// power on value.
func (d *Dev) Reset(p Peripheral) {
	r := d.rstr(p.Bus)
	mmio.SetBits(r, 1<<p.Bit)
	mmio.ClearBits(r, 1<<p.Bit)
}

//

const (
	cfgrSWS   = 2
	cfgrHPRE  = 4
	cfgrPPRE1 = 10
	cfgrPPRE2 = 13

	pllcfgrSRC = 1 << 22
)

var (
	ahbDividers = [...]uint32{2, 4, 8, 16, 64, 128, 256, 512}
	apbDividers = [...]uint32{2, 4, 8, 16}
)

func ahbPrescaler(v uint32) uint32 {
	if v < 8 {
		return 1
	}
	return ahbDividers[v-8]
}

func apbPrescaler(v uint32) uint32 {
	if v < 4 {
		return 1
	}
	return apbDividers[v-4]
}

func (d *Dev) enr(b Bus) mmio.Register {
	switch b {
	case APB1:
		return d.r.APB1ENR
	case APB2:
		return d.r.APB2ENR
	default:
		return d.r.AHB1ENR
	}
}

func (d *Dev) rstr(b Bus) mmio.Register {
	switch b {
	case APB1:
		return d.r.APB1RSTR
	case APB2:
		return d.r.APB2RSTR
	default:
		return d.r.AHB1RSTR
	}
}
