// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import (
	"fmt"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/stm32/mmio"
	"periph.io/x/stm32/rcc"
)

// State is the state of the transfer context.
type State uint8

// States.
const (
	Ready State = iota
	BusyTx
	BusyRx
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case BusyTx:
		return "BusyTx"
	case BusyRx:
		return "BusyRx"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Clock is the part of the clock controller the driver needs.
type Clock interface {
	PCLK1() physic.Frequency
	Enable(p rcc.Peripheral, on bool)
	Reset(p rcc.Peripheral)
}

// Interrupts is the part of the interrupt controller the driver needs.
type Interrupts interface {
	EnableIRQ(irq int, on bool) error
	SetPriority(irq int, prio uint8) error
}

// Instance identifies one I²C peripheral of the chip.
type Instance struct {
	Clock    rcc.Peripheral // clock gate and reset line; its name names the bus
	EventIRQ int
	ErrorIRQ int
}

// Dev is one I²C peripheral and its transfer context.
//
// There must be exactly one Dev per peripheral.
type Dev struct {
	inst Instance
	r    *Regs
	clk  Clock
	irq  Interrupts
	cfg  Config
	cb   Callback

	slave bool // slave event reporting enabled

	// Transfer context.
	state  State
	addr   uint8
	sr     bool   // repeated start: no STOP at the end
	tx     []byte // bytes left to send
	rx     []byte
	rxLen  int // bytes left to receive
	rxSize int
}

// New returns the driver for one peripheral.
//
// irq can be nil if the interrupt lines are configured elsewhere.
func New(inst Instance, r *Regs, clk Clock, irq Interrupts) *Dev {
	return &Dev{inst: inst, r: r, clk: clk, irq: irq}
}

func (d *Dev) String() string {
	return d.inst.Clock.Name
}

// SetCallback sets the function called on each Event. It must be called
// while no transfer is in progress.
func (d *Dev) SetCallback(cb Callback) {
	d.cb = cb
}

// State returns the state of the transfer context.
func (d *Dev) State() State {
	return d.state
}

// Config returns the configuration applied by the last Init.
func (d *Dev) Config() Config {
	return d.cfg
}

// EnableClock gates the peripheral clock.
func (d *Dev) EnableClock(on bool) {
	d.clk.Enable(d.inst.Clock, on)
}

// Init enables the peripheral clock and programs the timing, own address and
// ACK policy from c.
//
// The peripheral enable bit is left as it was; call SetEnabled(true) to start
// the peripheral.
func (d *Dev) Init(c Config) error {
	if d.state != Ready {
		return ErrBusy
	}
	t, err := ComputeTiming(d.clk.PCLK1(), c)
	if err != nil {
		return err
	}
	d.clk.Enable(d.inst.Clock, true)
	// CCR and TRISE can only be written with PE=0.
	pe := mmio.HasBits(d.r.CR1, cr1PE)
	if pe {
		mmio.ClearBits(d.r.CR1, cr1PE)
	}
	mmio.ReplaceBits(d.r.CR2, t.FREQ, cr2FREQ, 0)
	d.r.OAR1.Set(oar1Bit14 | uint32(c.OwnAddress)<<1)
	d.r.CCR.Set(t.CCR)
	d.r.TRISE.Set(t.TRISE)
	d.cfg = c
	if pe {
		mmio.SetBits(d.r.CR1, cr1PE)
	}
	d.setACK(c.ACK)
	return nil
}

// DeInit resets the peripheral registers to their power on value and drops
// any transfer in progress.
func (d *Dev) DeInit() {
	d.clk.Reset(d.inst.Clock)
	d.slave = false
	d.reset()
}

// SetEnabled sets the peripheral enable bit.
//
// The hardware clears ACK while the peripheral is disabled, so the
// configured ACK policy is applied again on enable.
func (d *Dev) SetEnabled(on bool) {
	if on {
		mmio.SetBits(d.r.CR1, cr1PE)
		d.setACK(d.cfg.ACK)
	} else {
		mmio.ClearBits(d.r.CR1, cr1PE)
	}
}

// EnableIRQ enables or disables both the event and the error interrupt lines
// in the interrupt controller.
func (d *Dev) EnableIRQ(on bool) error {
	if d.irq == nil {
		return fmt.Errorf("i2c: %s has no interrupt controller", d)
	}
	if err := d.irq.EnableIRQ(d.inst.EventIRQ, on); err != nil {
		return err
	}
	return d.irq.EnableIRQ(d.inst.ErrorIRQ, on)
}

// SetIRQPriority sets the priority of both interrupt lines.
func (d *Dev) SetIRQPriority(prio uint8) error {
	if d.irq == nil {
		return fmt.Errorf("i2c: %s has no interrupt controller", d)
	}
	if err := d.irq.SetPriority(d.inst.EventIRQ, prio); err != nil {
		return err
	}
	return d.irq.SetPriority(d.inst.ErrorIRQ, prio)
}

// Flag is a status flag; SR1 flags occupy the low 16 bits, SR2 flags the
// high 16 bits.
type Flag uint32

// Status flags.
const (
	FlagSB       Flag = sr1SB
	FlagADDR     Flag = sr1ADDR
	FlagBTF      Flag = sr1BTF
	FlagSTOPF    Flag = sr1STOPF
	FlagRXNE     Flag = sr1RXNE
	FlagTXE      Flag = sr1TXE
	FlagBERR     Flag = sr1BERR
	FlagARLO     Flag = sr1ARLO
	FlagAF       Flag = sr1AF
	FlagOVR      Flag = sr1OVR
	FlagPECERR   Flag = sr1PECERR
	FlagTIMEOUT  Flag = sr1TIMEOUT
	FlagSMBALERT Flag = sr1SMBALERT
	FlagMSL      Flag = sr2MSL << 16
	FlagBUSY     Flag = sr2BUSY << 16
	FlagTRA      Flag = sr2TRA << 16
	FlagGENCALL  Flag = sr2GENCALL << 16
)

// Flag returns true if any of the flags in f is set.
//
// Querying an SR2 flag reads SR2, which clears ADDR if SR1 was read just
// before.
func (d *Dev) Flag(f Flag) bool {
	if low := uint32(f) & 0xFFFF; low != 0 && d.r.SR1.Get()&low != 0 {
		return true
	}
	if high := uint32(f) >> 16; high != 0 && d.r.SR2.Get()&high != 0 {
		return true
	}
	return false
}

// EnableGeneralCall makes the peripheral answer to the general call address
// 0x00 as a slave.
func (d *Dev) EnableGeneralCall(on bool) {
	if on {
		mmio.SetBits(d.r.CR1, cr1ENGC)
	} else {
		mmio.ClearBits(d.r.CR1, cr1ENGC)
	}
}

// EnableSlaveCallbacks enables the interrupt sources needed to report slave
// events (address match, data request, data received, stop) through the
// Callback.
func (d *Dev) EnableSlaveCallbacks(on bool) {
	d.slave = on
	const all = cr2ITEVTEN | cr2ITBUFEN | cr2ITERREN
	if on {
		mmio.SetBits(d.r.CR2, all)
	} else {
		mmio.ClearBits(d.r.CR2, all)
	}
}

// Stop generates a STOP condition, releasing the bus.
//
// It is meant for recovery after a fault; transfers generate STOP on their
// own.
func (d *Dev) Stop() {
	mmio.SetBits(d.r.CR1, cr1STOP)
}

//

func (d *Dev) setACK(on bool) {
	if on {
		mmio.SetBits(d.r.CR1, cr1ACK)
	} else {
		mmio.ClearBits(d.r.CR1, cr1ACK)
	}
}

func (d *Dev) emit(e Event) {
	if d.cb != nil {
		d.cb(d, e)
	}
}

// reset clears the transfer context.
func (d *Dev) reset() {
	d.state = Ready
	d.addr = 0
	d.sr = false
	d.tx = nil
	d.rx = nil
	d.rxLen = 0
	d.rxSize = 0
}
