// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cbus

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/gpio/gpiotest"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2ctest"
	"periph.io/x/periph/conn/physic"
	stm32i2c "periph.io/x/stm32/i2c"
	"periph.io/x/stm32/i2c/i2csim"
	"periph.io/x/stm32/rcc"
)

func TestTx(t *testing.T) {
	b, s, m, _ := newSimBus(t, true)
	dev := &i2c.Dev{Addr: 0x50, Bus: b}
	if err := dev.Tx([]byte{0x10, 1, 2, 3}, nil); err != nil {
		t.Fatal(err)
	}
	if got := m.Data[0x10:0x13]; !reflect.DeepEqual(got, []byte{1, 2, 3}) {
		t.Fatalf("memory = %v", got)
	}
	s.ResetOps()
	r := make([]byte, 3)
	if err := dev.Tx([]byte{0x10}, r); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r, []byte{1, 2, 3}) {
		t.Fatalf("read = %v", r)
	}
	var starts, stops int
	for _, op := range s.Ops() {
		switch op.Kind {
		case i2csim.Start:
			starts++
		case i2csim.Stop:
			stops++
		}
	}
	if starts != 2 || stops != 1 {
		t.Fatalf("%d starts, %d stops: %v", starts, stops, s.Ops())
	}
	r = r[:1]
	if err := b.Tx(0x50, nil, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0 {
		t.Fatalf("read = %v", r)
	}
}

func TestTxRecord(t *testing.T) {
	b, _, m, _ := newSimBus(t, true)
	m.Data[0x75] = 0x68
	rec := &i2ctest.Record{Bus: b}
	dev := &i2c.Dev{Addr: 0x50, Bus: rec}
	var id [1]byte
	if err := dev.Tx([]byte{0x75}, id[:]); err != nil {
		t.Fatal(err)
	}
	want := []i2ctest.IO{{Addr: 0x50, W: []byte{0x75}, R: []byte{0x68}}}
	if !reflect.DeepEqual(rec.Ops, want) {
		t.Fatalf("ops = %v", rec.Ops)
	}
}

func TestTxNACK(t *testing.T) {
	b, _, _, _ := newSimBus(t, true)
	if err := b.Tx(0x51, []byte{1}, nil); !errors.Is(err, stm32i2c.ErrAckFailure) {
		t.Fatal(err)
	}
	// The bus is usable after a fault.
	if err := b.Tx(0x50, []byte{0, 0xAA}, nil); err != nil {
		t.Fatal(err)
	}
}

func TestTxInvalid(t *testing.T) {
	b, _, _, _ := newSimBus(t, true)
	if err := b.Tx(0x50, nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if err := b.Tx(0x400, []byte{1}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestTxTimeout(t *testing.T) {
	b, s, _, _ := newSimBus(t, false)
	b.Timeout = 10 * time.Millisecond
	if err := b.Tx(0x50, []byte{1}, nil); err != ErrTimedOut {
		t.Fatal(err)
	}
	if st := b.d.State(); st != stm32i2c.Ready {
		t.Fatal(st)
	}
	if ops := s.Ops(); ops[len(ops)-1].Kind != i2csim.Stop {
		t.Fatalf("ops = %v", ops)
	}
}

func TestSetSpeed(t *testing.T) {
	b, s, _, _ := newSimBus(t, false)
	if err := b.SetSpeed(stm32i2c.FastMode); err != nil {
		t.Fatal(err)
	}
	// F/S set, CCR = 16MHz / (3 * 400kHz) rounded up.
	if v := s.Peek(s.CCR); v != 0x8000|14 {
		t.Fatalf("CCR = %#x", v)
	}
	if !b.d.Config().ACK {
		t.Fatal("ACK policy lost")
	}
	if err := b.SetSpeed(physic.MegaHertz); err == nil {
		t.Fatal("expected error")
	}
	if err := b.SetSpeed(100 * physic.Hertz); err == nil {
		t.Fatal("expected error")
	}
}

func TestPins(t *testing.T) {
	scl := &gpiotest.Pin{N: "PB6", Num: 6, Fn: "AF4"}
	sda := &gpiotest.Pin{N: "PB7", Num: 7, Fn: "AF4"}
	d, _, _ := newSimDev(t)
	b := New(d, scl, sda)
	if b.SCL() != scl || b.SDA() != sda {
		t.Fatal("unexpected pins")
	}
	if b.Duplex() != conn.Half {
		t.Fatal(b.Duplex())
	}
	if s := b.String(); s != "I2C1" {
		t.Fatal(s)
	}
}

func TestClose(t *testing.T) {
	d, s, clk := newSimDev(t)
	b := New(d, nil, nil)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if clk.resets != 1 || clk.enabled[rcc.I2C1.Name] {
		t.Fatalf("resets=%d enabled=%t", clk.resets, clk.enabled[rcc.I2C1.Name])
	}
	if v := s.Peek(s.CR1); v != 0 {
		t.Fatalf("CR1 = %#x", v)
	}
}

//

type fakeClock struct {
	enabled map[string]bool
	resets  int
	sim     *i2csim.Sim
}

func (f *fakeClock) PCLK1() physic.Frequency {
	return 16 * physic.MegaHertz
}

func (f *fakeClock) Enable(p rcc.Peripheral, on bool) {
	f.enabled[p.Name] = on
}

func (f *fakeClock) Reset(p rcc.Peripheral) {
	f.resets++
	f.sim.Reset()
}

// newSimDev returns an initialized and enabled peripheral over a simulated
// register block.
func newSimDev(t *testing.T) (*stm32i2c.Dev, *i2csim.Sim, *fakeClock) {
	s := i2csim.New()
	clk := &fakeClock{enabled: map[string]bool{}, sim: s}
	r := &stm32i2c.Regs{
		CR1: s.CR1, CR2: s.CR2, OAR1: s.OAR1, OAR2: s.OAR2, DR: s.DR,
		SR1: s.SR1, SR2: s.SR2, CCR: s.CCR, TRISE: s.TRISE,
	}
	d := stm32i2c.New(stm32i2c.Instance{Clock: rcc.I2C1, EventIRQ: 31, ErrorIRQ: 32}, r, clk, nil)
	if err := d.Init(stm32i2c.Config{Speed: stm32i2c.StandardMode, ACK: true}); err != nil {
		t.Fatal(err)
	}
	d.SetEnabled(true)
	return d, s, clk
}

// newSimBus returns a Bus with a memory target at 0x50. When run is true, the
// simulated interrupts are serviced until the test ends.
func newSimBus(t *testing.T, run bool) (*Bus, *i2csim.Sim, *i2csim.Memory, *fakeClock) {
	d, s, clk := newSimDev(t)
	m := &i2csim.Memory{}
	s.Attach(0x50, m)
	b := New(d, nil, nil)
	if run {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Run(ctx, d.HandleEvent, d.HandleError)
		}()
		t.Cleanup(func() {
			cancel()
			<-done
		})
	}
	return b, s, m, clk
}
