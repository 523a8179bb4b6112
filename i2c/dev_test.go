// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import (
	"errors"
	"reflect"
	"testing"

	"periph.io/x/periph/conn/physic"
	"periph.io/x/stm32/i2c/i2csim"
	"periph.io/x/stm32/rcc"
)

func TestInit(t *testing.T) {
	d, s, clk, _ := newTestDev(t)
	if err := d.Init(Config{Speed: StandardMode, OwnAddress: 0x33, ACK: true}); err != nil {
		t.Fatal(err)
	}
	if !clk.enabled[rcc.I2C1.Name] {
		t.Fatal("clock not enabled")
	}
	if v := s.Peek(s.CR2) & cr2FREQ; v != 16 {
		t.Fatalf("FREQ = %d", v)
	}
	if v := s.Peek(s.OAR1); v != oar1Bit14|0x66 {
		t.Fatalf("OAR1 = %#x", v)
	}
	if v := s.Peek(s.CCR); v != 80 {
		t.Fatalf("CCR = %d", v)
	}
	if v := s.Peek(s.TRISE); v != 17 {
		t.Fatalf("TRISE = %d", v)
	}
	if v := s.Peek(s.CR1); v != cr1ACK {
		t.Fatalf("CR1 = %#x", v)
	}
	d.SetEnabled(true)
	if err := d.Init(Config{Speed: FastMode}); err != nil {
		t.Fatal(err)
	}
	if v := s.Peek(s.CR1); v != cr1PE {
		t.Fatalf("CR1 = %#x; PE must be kept and ACK cleared", v)
	}
	if err := d.Init(Config{Speed: 2 * FastMode}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatal(err)
	}
	if d.Config().Speed != FastMode {
		t.Fatal("an invalid Config must not be kept")
	}
	if _, err := d.StartSend([]byte{1}, 0x10, false); err != nil {
		t.Fatal(err)
	}
	if err := d.Init(Config{Speed: StandardMode}); err != ErrBusy {
		t.Fatal(err)
	}
}

func TestSetEnabled(t *testing.T) {
	d, s, _, _ := newTestDev(t)
	if err := d.Init(Config{Speed: StandardMode, ACK: true}); err != nil {
		t.Fatal(err)
	}
	// The hardware drops ACK while PE is cleared.
	s.CR1.Set(0)
	d.SetEnabled(true)
	if v := s.Peek(s.CR1); v != cr1PE|cr1ACK {
		t.Fatalf("CR1 = %#x", v)
	}
	d.SetEnabled(false)
	if v := s.Peek(s.CR1); v&cr1PE != 0 {
		t.Fatalf("CR1 = %#x", v)
	}
}

func TestDeInit(t *testing.T) {
	d, s, clk, events := newTestDev(t)
	initDev(t, d, s)
	if _, err := d.StartReceive(make([]byte, 2), 0x10, false); err != nil {
		t.Fatal(err)
	}
	d.DeInit()
	if d.State() != Ready {
		t.Fatal(d.State())
	}
	if clk.resets != 1 {
		t.Fatal(clk.resets)
	}
	if v := s.Peek(s.CCR); v != 0 {
		t.Fatalf("CCR = %d", v)
	}
	if len(*events) != 0 {
		t.Fatal(*events)
	}
}

func TestStartBusy(t *testing.T) {
	d, s, _, _ := newTestDev(t)
	initDev(t, d, s)
	w := []byte{1, 2, 3}
	if st, err := d.StartSend(w, 0x21, true); st != BusyTx || err != nil {
		t.Fatalf("StartSend() = %s, %v", st, err)
	}
	if st, err := d.StartReceive(make([]byte, 4), 0x42, false); st != BusyTx || err != ErrBusy {
		t.Fatalf("StartReceive() = %s, %v", st, err)
	}
	if st, err := d.StartSend([]byte{4}, 0x42, false); st != BusyTx || err != ErrBusy {
		t.Fatalf("StartSend() = %s, %v", st, err)
	}
	if d.addr != 0x21 || !d.sr || len(d.tx) != 3 || d.rx != nil {
		t.Fatal("the transfer in progress was modified")
	}
	want := []i2csim.Op{{Kind: i2csim.Start}}
	if ops := s.Ops(); !reflect.DeepEqual(ops, want) {
		t.Fatalf("ops = %v", ops)
	}
	if err := d.Send([]byte{1}, 0x10, false); err != ErrBusy {
		t.Fatal(err)
	}
}

func TestStartInvalid(t *testing.T) {
	d, s, _, _ := newTestDev(t)
	initDev(t, d, s)
	if st, err := d.StartSend([]byte{1}, 0x80, false); st != Ready || err == nil {
		t.Fatalf("StartSend() = %s, %v", st, err)
	}
	if st, err := d.StartReceive(nil, 0x10, false); st != Ready || err == nil {
		t.Fatalf("StartReceive() = %s, %v", st, err)
	}
	if ops := s.Ops(); len(ops) != 0 {
		t.Fatalf("ops = %v", ops)
	}
}

func TestFlag(t *testing.T) {
	d, s, _, _ := newTestDev(t)
	s.Raise(sr1BTF | sr1TXE)
	s.SetSR2(sr2BUSY | sr2MSL)
	if !d.Flag(FlagBTF) || !d.Flag(FlagTXE) || d.Flag(FlagRXNE) {
		t.Fatal("SR1 flags")
	}
	if !d.Flag(FlagBUSY) || !d.Flag(FlagMSL) || d.Flag(FlagTRA) || d.Flag(FlagGENCALL) {
		t.Fatal("SR2 flags")
	}
	if !d.Flag(FlagRXNE | FlagBUSY) {
		t.Fatal("combined flags")
	}
}

func TestIRQ(t *testing.T) {
	d, _, _, _ := newTestDev(t)
	irq := &fakeIRQ{enabled: map[int]bool{}, prio: map[int]uint8{}}
	d.irq = irq
	if err := d.EnableIRQ(true); err != nil {
		t.Fatal(err)
	}
	if err := d.SetIRQPriority(5); err != nil {
		t.Fatal(err)
	}
	want := map[int]bool{31: true, 32: true}
	if !reflect.DeepEqual(irq.enabled, want) {
		t.Fatal(irq.enabled)
	}
	if irq.prio[31] != 5 || irq.prio[32] != 5 {
		t.Fatal(irq.prio)
	}
	if err := d.EnableIRQ(false); err != nil {
		t.Fatal(err)
	}
	if irq.enabled[31] || irq.enabled[32] {
		t.Fatal(irq.enabled)
	}
	d.irq = nil
	if d.EnableIRQ(true) == nil || d.SetIRQPriority(1) == nil {
		t.Fatal("expected error without interrupt controller")
	}
}

func TestStrings(t *testing.T) {
	d, _, _, _ := newTestDev(t)
	if s := d.String(); s != "I2C1" {
		t.Fatal(s)
	}
	if s := BusyRx.String(); s != "BusyRx" {
		t.Fatal(s)
	}
	if s := State(9).String(); s != "State(9)" {
		t.Fatal(s)
	}
	if s := EventArbitrationLost.String(); s != "ArbitrationLost" {
		t.Fatal(s)
	}
	if s := Event(40).String(); s != "Event(40)" {
		t.Fatal(s)
	}
}

func TestEventErr(t *testing.T) {
	data := []struct {
		e    Event
		want error
	}{
		{EventTxComplete, nil},
		{EventStop, nil},
		{EventBusError, ErrBusError},
		{EventArbitrationLost, ErrArbitrationLost},
		{EventAckFailure, ErrAckFailure},
		{EventOverrun, ErrOverrun},
		{EventTimeout, ErrTimeout},
		{EventDataRequest, nil},
	}
	for _, line := range data {
		if err := line.e.Err(); err != line.want {
			t.Fatalf("%s.Err() = %v; want %v", line.e, err, line.want)
		}
	}
}

//

type fakeClock struct {
	pclk    physic.Frequency
	enabled map[string]bool
	resets  int
	sim     *i2csim.Sim
}

func (f *fakeClock) PCLK1() physic.Frequency {
	return f.pclk
}

func (f *fakeClock) Enable(p rcc.Peripheral, on bool) {
	f.enabled[p.Name] = on
}

func (f *fakeClock) Reset(p rcc.Peripheral) {
	f.resets++
	f.sim.Reset()
}

type fakeIRQ struct {
	enabled map[int]bool
	prio    map[int]uint8
}

func (f *fakeIRQ) EnableIRQ(irq int, on bool) error {
	f.enabled[irq] = on
	return nil
}

func (f *fakeIRQ) SetPriority(irq int, prio uint8) error {
	f.prio[irq] = prio
	return nil
}

// newTestDev returns a Dev over a simulated register block clocked at 16MHz.
// The events reported to the callback are appended to the returned slice.
func newTestDev(t *testing.T) (*Dev, *i2csim.Sim, *fakeClock, *[]Event) {
	s := i2csim.New()
	clk := &fakeClock{pclk: 16 * physic.MegaHertz, enabled: map[string]bool{}, sim: s}
	r := &Regs{
		CR1: s.CR1, CR2: s.CR2, OAR1: s.OAR1, OAR2: s.OAR2, DR: s.DR,
		SR1: s.SR1, SR2: s.SR2, CCR: s.CCR, TRISE: s.TRISE,
	}
	d := New(Instance{Clock: rcc.I2C1, EventIRQ: 31, ErrorIRQ: 32}, r, clk, nil)
	var events []Event
	d.SetCallback(func(dev *Dev, e Event) {
		if dev != d {
			t.Errorf("unexpected Dev %p", dev)
		}
		events = append(events, e)
	})
	return d, s, clk, &events
}

// initDev configures d for 100kHz with ACK enabled and empties the op log.
func initDev(t *testing.T, d *Dev, s *i2csim.Sim) {
	if err := d.Init(Config{Speed: StandardMode, ACK: true}); err != nil {
		t.Fatal(err)
	}
	d.SetEnabled(true)
	s.ResetOps()
}

// pump services interrupts until none is pending, as the interrupt
// controller would.
func pump(t *testing.T, d *Dev, s *i2csim.Sim) {
	for i := 0; i < 1000; i++ {
		ev, er := s.Pending()
		switch {
		case er:
			d.HandleError()
		case ev:
			d.HandleEvent()
		default:
			return
		}
	}
	t.Fatal("interrupt storm")
}
