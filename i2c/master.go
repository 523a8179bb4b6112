// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import (
	"errors"

	"periph.io/x/stm32/mmio"
)

// StartSend starts sending w to the 7 bits address addr and returns
// immediately.
//
// Completion is reported with EventTxComplete. When repeatedStart is true no
// STOP is generated at the end so the next transfer chains with a repeated
// START.
//
// w must not be modified until the transfer completes or is closed. If a
// transfer is already in progress, the current state is returned with
// ErrBusy and the transfer in progress is not affected.
func (d *Dev) StartSend(w []byte, addr uint16, repeatedStart bool) (State, error) {
	if d.state != Ready {
		return d.state, ErrBusy
	}
	if err := checkTransfer(len(w), addr); err != nil {
		return d.state, err
	}
	d.tx = w
	d.addr = uint8(addr)
	d.sr = repeatedStart
	d.state = BusyTx
	d.start()
	// The handlers own the state from here on.
	return BusyTx, nil
}

// StartReceive starts reading len(r) bytes from the 7 bits address addr into
// r and returns immediately.
//
// Completion is reported with EventRxComplete. The rules of StartSend apply.
func (d *Dev) StartReceive(r []byte, addr uint16, repeatedStart bool) (State, error) {
	if d.state != Ready {
		return d.state, ErrBusy
	}
	if err := checkTransfer(len(r), addr); err != nil {
		return d.state, err
	}
	d.rx = r
	d.rxSize = len(r)
	d.rxLen = len(r)
	d.addr = uint8(addr)
	d.sr = repeatedStart
	d.state = BusyRx
	// Bytes are ACKed until two remain; a single byte is NACKed at ADDR.
	d.setACK(true)
	d.start()
	return BusyRx, nil
}

// HandleEvent services the event interrupt.
//
// It advances the transfer by at most one step per call. Flags that do not
// match the current state are ignored.
func (d *Dev) HandleEvent() {
	cr2 := d.r.CR2.Get()
	if cr2&cr2ITEVTEN == 0 {
		return
	}
	buf := cr2&cr2ITBUFEN != 0
	sr1 := d.r.SR1.Get()
	switch {
	case sr1&sr1SB != 0:
		if d.state == Ready {
			return
		}
		a := uint32(d.addr) << 1
		if d.state == BusyRx {
			a |= 1
		}
		d.r.DR.Set(a)

	case sr1&sr1ADDR != 0:
		if d.state == BusyRx && d.rxSize == 1 {
			// ACK must be cleared before ADDR so the only byte is NACKed.
			mmio.ClearBits(d.r.CR1, cr1ACK)
			d.r.SR2.Get()
			if !d.sr {
				mmio.SetBits(d.r.CR1, cr1STOP)
			}
			return
		}
		sr2 := d.r.SR2.Get()
		if d.state == Ready && d.slave {
			if sr2&sr2GENCALL != 0 {
				d.emit(EventGeneralCall)
			} else {
				d.emit(EventAddrMatch)
			}
		}

	case sr1&sr1STOPF != 0:
		d.r.CR1.Set(d.r.CR1.Get())
		d.emit(EventStop)

	case d.state == BusyTx && sr1&(sr1TXE|sr1BTF) != 0:
		if len(d.tx) != 0 {
			if sr1&sr1TXE == 0 {
				return
			}
			d.r.DR.Set(uint32(d.tx[0]))
			d.tx = d.tx[1:]
			if len(d.tx) == 0 {
				// Wait for BTF of the last byte.
				mmio.ClearBits(d.r.CR2, cr2ITBUFEN)
			}
			return
		}
		if sr1&sr1BTF == 0 {
			return
		}
		if !d.sr {
			mmio.SetBits(d.r.CR1, cr1STOP)
		}
		d.CloseSend()
		d.emit(EventTxComplete)

	case buf && sr1&sr1RXNE != 0:
		if d.state == BusyRx {
			d.receiveByte()
			return
		}
		if d.state == Ready && d.slave && d.r.SR2.Get()&sr2TRA == 0 {
			d.emit(EventDataReceive)
		}

	case buf && sr1&sr1TXE != 0:
		if d.state == Ready && d.slave && d.r.SR2.Get()&sr2TRA != 0 {
			d.emit(EventDataRequest)
		}
	}
}

// CloseSend ends the send transfer, whether it completed or not.
//
// It disables the transfer interrupt sources, restores the configured ACK
// policy and sets the state to Ready. It is safe to call at any time.
func (d *Dev) CloseSend() {
	d.close()
}

// CloseReceive ends the receive transfer, whether it completed or not.
//
// It behaves like CloseSend.
func (d *Dev) CloseReceive() {
	d.close()
}

//

func checkTransfer(n int, addr uint16) error {
	if addr > 0x7F {
		return errors.New("i2c: only 7 bits addresses are supported")
	}
	if n == 0 {
		return errors.New("i2c: empty buffer")
	}
	return nil
}

// start requests a START condition and enables the interrupt sources. SB is
// only serviced once the sources are enabled, after the context is set.
func (d *Dev) start() {
	mmio.SetBits(d.r.CR1, cr1START)
	mmio.SetBits(d.r.CR2, cr2ITBUFEN|cr2ITEVTEN|cr2ITERREN)
}

func (d *Dev) receiveByte() {
	if d.rxLen == 2 && d.rxSize > 1 {
		// The byte being shifted in now is the last one; NACK it.
		mmio.ClearBits(d.r.CR1, cr1ACK)
	}
	d.rx[d.rxSize-d.rxLen] = byte(d.r.DR.Get())
	d.rxLen--
	if d.rxLen == 1 && d.rxSize > 1 && !d.sr {
		mmio.SetBits(d.r.CR1, cr1STOP)
	}
	if d.rxLen == 0 {
		d.CloseReceive()
		d.emit(EventRxComplete)
	}
}

func (d *Dev) close() {
	if d.slave {
		// Slave events keep every source enabled.
		mmio.SetBits(d.r.CR2, cr2ITBUFEN|cr2ITEVTEN|cr2ITERREN)
	} else {
		mmio.ClearBits(d.r.CR2, cr2ITBUFEN|cr2ITEVTEN)
	}
	d.reset()
	d.setACK(d.cfg.ACK)
}
