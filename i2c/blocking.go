// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import "periph.io/x/stm32/mmio"

// Send writes w to addr by polling the status flags.
//
// It must not be used while interrupts are enabled for the peripheral. There
// is no timeout: a target holding SCL low blocks forever. A fault flag aborts
// the transfer with a STOP and returns the matching error.
func (d *Dev) Send(w []byte, addr uint16, repeatedStart bool) error {
	if d.state != Ready {
		return ErrBusy
	}
	if err := checkTransfer(len(w), addr); err != nil {
		return err
	}
	mmio.SetBits(d.r.CR1, cr1START)
	if err := d.poll(sr1SB); err != nil {
		return err
	}
	d.r.DR.Set(uint32(addr) << 1)
	if err := d.poll(sr1ADDR); err != nil {
		return err
	}
	d.r.SR2.Get()
	for _, b := range w {
		if err := d.poll(sr1TXE); err != nil {
			return err
		}
		d.r.DR.Set(uint32(b))
	}
	if err := d.poll(sr1BTF); err != nil {
		return err
	}
	if !repeatedStart {
		mmio.SetBits(d.r.CR1, cr1STOP)
	}
	return nil
}

// Receive reads len(r) bytes from addr by polling the status flags.
//
// The rules of Send apply.
func (d *Dev) Receive(r []byte, addr uint16, repeatedStart bool) error {
	if d.state != Ready {
		return ErrBusy
	}
	if err := checkTransfer(len(r), addr); err != nil {
		return err
	}
	defer d.setACK(d.cfg.ACK)
	mmio.SetBits(d.r.CR1, cr1ACK|cr1START)
	if err := d.poll(sr1SB); err != nil {
		return err
	}
	d.r.DR.Set(uint32(addr)<<1 | 1)
	if err := d.poll(sr1ADDR); err != nil {
		return err
	}
	if len(r) == 1 {
		d.setACK(false)
	}
	d.r.SR2.Get()
	if len(r) == 1 && !repeatedStart {
		mmio.SetBits(d.r.CR1, cr1STOP)
	}
	for i := range r {
		left := len(r) - i
		if left == 2 {
			d.setACK(false)
		}
		if err := d.poll(sr1RXNE); err != nil {
			return err
		}
		r[i] = byte(d.r.DR.Get())
		if left == 2 && !repeatedStart {
			mmio.SetBits(d.r.CR1, cr1STOP)
		}
	}
	return nil
}

//

// poll busy waits for flag. A fault flag is cleared and returned as an error
// after releasing the bus.
func (d *Dev) poll(flag uint32) error {
	for {
		sr1 := d.r.SR1.Get()
		for _, f := range faults {
			if sr1&f.flag != 0 {
				d.r.SR1.Set(^f.flag & 0xFFFF)
				mmio.SetBits(d.r.CR1, cr1STOP)
				return f.ev.Err()
			}
		}
		if sr1&flag != 0 {
			return nil
		}
	}
}
