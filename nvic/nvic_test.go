// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nvic

import (
	"testing"

	"periph.io/x/stm32/mmio"
)

func TestEnableIRQ(t *testing.T) {
	r := newTestRegs()
	d := New(r)
	if err := d.EnableIRQ(31, true); err != nil {
		t.Fatal(err)
	}
	if err := d.EnableIRQ(72, true); err != nil {
		t.Fatal(err)
	}
	if v := r.ISER[0].Get(); v != 1<<31 {
		t.Fatalf("ISER0 = %#x", v)
	}
	if v := r.ISER[2].Get(); v != 1<<8 {
		t.Fatalf("ISER2 = %#x", v)
	}
	if !d.Enabled(31) || d.Enabled(32) {
		t.Fatal("Enabled()")
	}
	if err := d.EnableIRQ(32, false); err != nil {
		t.Fatal(err)
	}
	if v := r.ICER[1].Get(); v != 1 {
		t.Fatalf("ICER1 = %#x", v)
	}
	if err := d.EnableIRQ(MaxIRQ+1, true); err == nil {
		t.Fatal("expected error")
	}
}

func TestSetPriority(t *testing.T) {
	r := newTestRegs()
	d := New(r)
	if err := d.SetPriority(33, 0xA); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPriority(34, 3); err != nil {
		t.Fatal(err)
	}
	// IRQ 33 is byte lane 1 of IPR8, IRQ 34 is lane 2; upper nibble only.
	if v := r.IPR[8].Get(); v != 0x0030A000 {
		t.Fatalf("IPR8 = %#x", v)
	}
	if p := d.Priority(33); p != 0xA {
		t.Fatalf("Priority() = %d", p)
	}
	if err := d.SetPriority(33, 16); err == nil {
		t.Fatal("expected error")
	}
	if err := d.SetPriority(-1, 1); err == nil {
		t.Fatal("expected error")
	}
}

//

func newTestRegs() *Regs {
	r := &Regs{}
	for i := range r.ISER {
		r.ISER[i] = &setClear{}
		r.ICER[i] = &mmio.Word{}
	}
	for i := range r.IPR {
		r.IPR[i] = &mmio.Word{}
	}
	return r
}

// setClear models ISER: writing 1 sets a bit, writing 0 has no effect.
type setClear struct {
	mmio.Word
}

func (s *setClear) Set(v uint32) {
	s.Word.Set(s.Word.Get() | v)
}
