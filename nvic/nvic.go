// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package nvic drives the Cortex-M nested vectored interrupt controller.
//
// Only the device interrupt lines are handled; system exceptions are
// configured through the system control block.
package nvic

import (
	"fmt"

	"periph.io/x/stm32/mmio"
)

// PriorityBits is the number of priority bits implemented by STM32F4 parts.
//
// Priorities occupy the upper bits of each 8 bits priority field.
const PriorityBits = 4

// MaxIRQ is the highest device interrupt number on the STM32F407.
const MaxIRQ = 81

// Regs is the NVIC register block.
type Regs struct {
	ISER [3]mmio.Register
	ICER [3]mmio.Register
	IPR  [(MaxIRQ + 4) / 4]mmio.Register
}

// NewRegs returns the memory mapped register block.
func NewRegs() *Regs {
	r := &Regs{}
	for i := range r.ISER {
		r.ISER[i] = mmio.Reg32(0xE000E100 + 4*uintptr(i))
		r.ICER[i] = mmio.Reg32(0xE000E180 + 4*uintptr(i))
	}
	for i := range r.IPR {
		r.IPR[i] = mmio.Reg32(0xE000E400 + 4*uintptr(i))
	}
	return r
}

// Dev is the interrupt controller.
type Dev struct {
	r *Regs
}

// New returns an interrupt controller over r.
func New(r *Regs) *Dev {
	return &Dev{r: r}
}

func (d *Dev) String() string {
	return "NVIC"
}

// EnableIRQ enables or disables a device interrupt line.
//
// ISER and ICER are write-1 registers so no read-modify-write is needed.
func (d *Dev) EnableIRQ(irq int, on bool) error {
	if err := check(irq); err != nil {
		return err
	}
	if on {
		d.r.ISER[irq/32].Set(1 << uint(irq%32))
	} else {
		d.r.ICER[irq/32].Set(1 << uint(irq%32))
	}
	return nil
}

// Enabled returns true if the interrupt line is enabled.
func (d *Dev) Enabled(irq int) bool {
	if check(irq) != nil {
		return false
	}
	return mmio.HasBits(d.r.ISER[irq/32], 1<<uint(irq%32))
}

// SetPriority sets the priority of an interrupt line. Lower values preempt
// higher ones.
func (d *Dev) SetPriority(irq int, prio uint8) error {
	if err := check(irq); err != nil {
		return err
	}
	if prio >= 1<<PriorityBits {
		return fmt.Errorf("nvic: invalid priority %d; only %d bits are implemented", prio, PriorityBits)
	}
	shift := uint8(8*(irq%4) + 8 - PriorityBits)
	mmio.ReplaceBits(d.r.IPR[irq/4], uint32(prio), 1<<PriorityBits-1, shift)
	return nil
}

// Priority returns the priority of an interrupt line.
func (d *Dev) Priority(irq int) uint8 {
	if check(irq) != nil {
		return 0
	}
	shift := uint8(8*(irq%4) + 8 - PriorityBits)
	return uint8(mmio.Field(d.r.IPR[irq/4], 1<<PriorityBits-1, shift))
}

//

func check(irq int) error {
	if irq < 0 || irq > MaxIRQ {
		return fmt.Errorf("nvic: invalid IRQ %d", irq)
	}
	return nil
}
