// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import "periph.io/x/stm32/mmio"

// Regs is the I²C peripheral register block.
type Regs struct {
	CR1   mmio.Register
	CR2   mmio.Register
	OAR1  mmio.Register
	OAR2  mmio.Register
	DR    mmio.Register
	SR1   mmio.Register
	SR2   mmio.Register
	CCR   mmio.Register
	TRISE mmio.Register
}

// NewRegs returns the memory mapped register block at base.
func NewRegs(base uintptr) *Regs {
	return &Regs{
		CR1:   mmio.Reg32(base + 0x00),
		CR2:   mmio.Reg32(base + 0x04),
		OAR1:  mmio.Reg32(base + 0x08),
		OAR2:  mmio.Reg32(base + 0x0C),
		DR:    mmio.Reg32(base + 0x10),
		SR1:   mmio.Reg32(base + 0x14),
		SR2:   mmio.Reg32(base + 0x18),
		CCR:   mmio.Reg32(base + 0x1C),
		TRISE: mmio.Reg32(base + 0x20),
	}
}

// CR1 bits.
const (
	cr1PE    = 1 << 0
	cr1ENGC  = 1 << 6
	cr1START = 1 << 8
	cr1STOP  = 1 << 9
	cr1ACK   = 1 << 10
	cr1POS   = 1 << 11
	cr1SWRST = 1 << 15
)

// CR2 bits.
const (
	cr2FREQ    = 0x3F
	cr2ITERREN = 1 << 8
	cr2ITEVTEN = 1 << 9
	cr2ITBUFEN = 1 << 10
)

// OAR1 bits.
const (
	// oar1Bit14 must be kept at 1 by software.
	oar1Bit14   = 1 << 14
	oar1ADDMODE = 1 << 15
)

// SR1 bits.
const (
	sr1SB       = 1 << 0
	sr1ADDR     = 1 << 1
	sr1BTF      = 1 << 2
	sr1ADD10    = 1 << 3
	sr1STOPF    = 1 << 4
	sr1RXNE     = 1 << 6
	sr1TXE      = 1 << 7
	sr1BERR     = 1 << 8
	sr1ARLO     = 1 << 9
	sr1AF       = 1 << 10
	sr1OVR      = 1 << 11
	sr1PECERR   = 1 << 12
	sr1TIMEOUT  = 1 << 14
	sr1SMBALERT = 1 << 15

	// sr1Errors are the rc_w0 fault flags; they are cleared by writing 0.
	sr1Errors = sr1BERR | sr1ARLO | sr1AF | sr1OVR | sr1PECERR | sr1TIMEOUT | sr1SMBALERT
)

// SR2 bits.
const (
	sr2MSL     = 1 << 0
	sr2BUSY    = 1 << 1
	sr2TRA     = 1 << 2
	sr2GENCALL = 1 << 4
	sr2DUALF   = 1 << 7
)

// CCR bits.
const (
	ccrMask = 0xFFF
	ccrDUTY = 1 << 14
	ccrFS   = 1 << 15
)

// triseMask is the TRISE field mask.
const triseMask = 0x3F
