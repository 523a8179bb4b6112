// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
	stm32i2c "periph.io/x/stm32/i2c"
)

// DefaultTimeout is how long Tx waits for each transfer to complete.
const DefaultTimeout = time.Second

// ErrTimedOut is returned when a transfer did not complete in time.
var ErrTimedOut = errors.New("i2cbus: transfer timed out")

// Bus is an i2c.BusCloser over one peripheral.
//
// It takes over the peripheral callback; slave events are ignored.
//
// On a fault or a timeout, Tx closes the transfer from the calling goroutine.
// This assumes no interrupt handler of the peripheral is still running at
// that point: the fault was the last event of the transfer, and after a
// timeout nothing is pending anymore.
type Bus struct {
	// Timeout is how long Tx waits for each transfer to complete. It must be
	// set before the first Tx.
	Timeout time.Duration

	mu     sync.Mutex
	d      *stm32i2c.Dev
	scl    gpio.PinIO
	sda    gpio.PinIO
	events chan stm32i2c.Event
}

// New returns a Bus over d, which must already be initialized and enabled,
// with its interrupts routed to its handlers.
//
// scl and sda are only reported by SCL and SDA; they can be nil.
func New(d *stm32i2c.Dev, scl, sda gpio.PinIO) *Bus {
	b := &Bus{
		Timeout: DefaultTimeout,
		d:       d,
		scl:     scl,
		sda:     sda,
		events:  make(chan stm32i2c.Event, 16),
	}
	d.SetCallback(b.notify)
	return b
}

func (b *Bus) String() string {
	return b.d.String()
}

// Close implements i2c.BusCloser.
//
// It resets the peripheral and gates its clock.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.d.SetCallback(nil)
	b.d.DeInit()
	b.d.EnableClock(false)
	return nil
}

// Duplex implements conn.Conn.
func (b *Bus) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements i2c.Bus.
//
// A write followed by a read is chained with a repeated START.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 && len(r) == 0 {
		return errors.New("i2cbus: empty transaction")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drain()
	if len(w) != 0 {
		if _, err := b.d.StartSend(w, addr, len(r) != 0); err != nil {
			return err
		}
		if err := b.wait(stm32i2c.EventTxComplete); err != nil {
			return err
		}
	}
	if len(r) != 0 {
		if _, err := b.d.StartReceive(r, addr, false); err != nil {
			return err
		}
		if err := b.wait(stm32i2c.EventRxComplete); err != nil {
			return err
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus.
//
// Up to 100kHz uses standard mode, up to 400kHz fast mode.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f > stm32i2c.FastMode {
		return fmt.Errorf("i2cbus: invalid speed %s; maximum supported clock is %s", f, stm32i2c.FastMode)
	}
	if f < physic.KiloHertz {
		return fmt.Errorf("i2cbus: invalid speed %s; minimum supported clock is 1kHz; did you forget to multiply by physic.KiloHertz?", f)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.d.Config()
	c.Speed = f
	return b.d.Init(c)
}

// SCL implements i2c.Pins.
func (b *Bus) SCL() gpio.PinIO {
	return b.scl
}

// SDA implements i2c.Pins.
func (b *Bus) SDA() gpio.PinIO {
	return b.sda
}

//

// notify runs in interrupt context and must not block.
func (b *Bus) notify(d *stm32i2c.Dev, e stm32i2c.Event) {
	select {
	case b.events <- e:
	default:
	}
}

func (b *Bus) drain() {
	for {
		select {
		case <-b.events:
		default:
			return
		}
	}
}

// wait blocks until want or a fault is reported. On fault or timeout the bus
// is released and the transfer closed.
func (b *Bus) wait(want stm32i2c.Event) error {
	t := time.NewTimer(b.Timeout)
	defer t.Stop()
	for {
		select {
		case e := <-b.events:
			if err := e.Err(); err != nil {
				b.abort()
				return fmt.Errorf("i2cbus: %s: %w", b.d, err)
			}
			if e == want {
				return nil
			}
		case <-t.C:
			b.abort()
			return ErrTimedOut
		}
	}
}

// abort releases the bus and closes the transfer. Closing disables the event
// sources before the context is reset.
func (b *Bus) abort() {
	b.d.Stop()
	b.d.CloseSend()
	b.d.CloseReceive()
}

var _ i2c.BusCloser = &Bus{}
var _ i2c.Pins = &Bus{}
