// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2csim

import (
	"context"
	"sync"

	"periph.io/x/stm32/mmio"
)

// Sim is a simulated I²C register block.
//
// The exported registers can be used concurrently.
type Sim struct {
	CR1   mmio.Register
	CR2   mmio.Register
	OAR1  mmio.Register
	OAR2  mmio.Register
	DR    mmio.Register
	SR1   mmio.Register
	SR2   mmio.Register
	CCR   mmio.Register
	TRISE mmio.Register

	mu   sync.Mutex
	cond sync.Cond
	regs [nbRegs]uint32
	// latch is set by a SR1 read and consumed by the next step of a clear
	// sequence.
	latch   bool
	dataAck bool // the byte in DR was ACKed
	ops     []Op

	targets map[uint8]Target
	cur     Target // addressed target
	reading bool   // cur sends to the master
}

// New returns a simulated register block in its power on state.
func New() *Sim {
	s := &Sim{}
	s.cond.L = &s.mu
	s.CR1 = reg{s, cr1}
	s.CR2 = reg{s, cr2}
	s.OAR1 = reg{s, oar1}
	s.OAR2 = reg{s, oar2}
	s.DR = reg{s, dr}
	s.SR1 = reg{s, sr1}
	s.SR2 = reg{s, sr2}
	s.CCR = reg{s, ccr}
	s.TRISE = reg{s, trise}
	s.regs[trise] = 2
	return s
}

// Attach connects a target at the 7 bits address addr and turns on the bus
// model.
func (s *Sim) Attach(addr uint8, t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.targets == nil {
		s.targets = map[uint8]Target{}
	}
	s.targets[addr] = t
}

// Reset puts the registers back in their power on state, as the RCC reset
// line does. The op log and the targets are kept.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = [nbRegs]uint32{}
	s.regs[trise] = 2
	s.latch = false
	s.dataAck = false
	s.cur = nil
	s.cond.Broadcast()
}

// Raise sets SR1 flags, as the hardware would.
func (s *Sim) Raise(flags uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[sr1] |= flags
	s.cond.Broadcast()
}

// SetSR2 replaces the content of SR2.
func (s *Sim) SetSR2(v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[sr2] = v
}

// Feed loads b in DR and raises RXNE, as if b had been received. The byte is
// ACKed according to the current ACK bit.
func (s *Sim) Feed(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(b)
	s.cond.Broadcast()
}

// Peek returns a register content without the side effects of a read.
func (s *Sim) Peek(r mmio.Register) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x, ok := r.(reg); ok && x.s == s {
		return s.regs[x.id]
	}
	return 0
}

// Ops returns a copy of the op log.
func (s *Sim) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.ops...)
}

// ResetOps empties the op log.
func (s *Sim) ResetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

// Pending reports whether the event and the error interrupts are pending.
func (s *Sim) Pending() (event, err bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventLocked(), s.errorLocked()
}

// Run calls the interrupt handlers while an interrupt is pending, until ctx
// is done. The error interrupt has priority.
//
// The handlers are called without the simulator locked and never
// concurrently.
func (s *Sim) Run(ctx context.Context, event, err func()) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			return
		}
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	}()
	s.mu.Lock()
	for {
		for ctx.Err() == nil && !s.eventLocked() && !s.errorLocked() {
			s.cond.Wait()
		}
		if e := ctx.Err(); e != nil {
			s.mu.Unlock()
			return e
		}
		isErr := s.errorLocked()
		s.mu.Unlock()
		if isErr {
			err()
		} else {
			event()
		}
		s.mu.Lock()
	}
}

//

const (
	cr1 = iota
	cr2
	oar1
	oar2
	dr
	sr1
	sr2
	ccr
	trise
	nbRegs
)

const (
	cr1START = 1 << 8
	cr1STOP  = 1 << 9
	cr1ACK   = 1 << 10

	cr2ITERREN = 1 << 8
	cr2ITEVTEN = 1 << 9
	cr2ITBUFEN = 1 << 10

	sr1SB     = 1 << 0
	sr1ADDR   = 1 << 1
	sr1BTF    = 1 << 2
	sr1ADD10  = 1 << 3
	sr1STOPF  = 1 << 4
	sr1RXNE   = 1 << 6
	sr1TXE    = 1 << 7
	sr1AF     = 1 << 10
	sr1Errors = 0xDF00

	sr2MSL  = 1 << 0
	sr2BUSY = 1 << 1
	sr2TRA  = 1 << 2
)

type reg struct {
	s  *Sim
	id int
}

func (r reg) Get() uint32 {
	return r.s.get(r.id)
}

func (r reg) Set(v uint32) {
	r.s.set(r.id, v)
}

func (s *Sim) get(id int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.regs[id]
	switch id {
	case sr1:
		s.latch = true
	case sr2:
		if s.latch && s.regs[sr1]&sr1ADDR != 0 {
			s.latch = false
			s.regs[sr1] &^= sr1ADDR
			s.ops = append(s.ops, Op{Kind: AddrClear})
			s.addrClearedLocked()
		}
	case dr:
		s.regs[sr1] &^= sr1RXNE
		s.ops = append(s.ops, Op{Kind: Read, Data: byte(v), Ack: s.dataAck})
		if s.cur != nil && s.reading && s.dataAck {
			s.loadLocked(s.cur.Read())
		}
	}
	s.cond.Broadcast()
	return v
}

func (s *Sim) set(id int, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.cond.Broadcast()
	switch id {
	case cr1:
		s.setCR1Locked(v)
	case dr:
		s.regs[dr] = v & 0xFF
		s.ops = append(s.ops, Op{Kind: Write, Data: byte(v)})
		if s.latch && s.regs[sr1]&sr1SB != 0 {
			s.latch = false
			s.regs[sr1] &^= sr1SB
			s.addressLocked(byte(v))
			return
		}
		s.regs[sr1] &^= sr1TXE | sr1BTF
		if s.cur != nil && !s.reading {
			if s.cur.Write(byte(v)) {
				s.regs[sr1] |= sr1TXE | sr1BTF
			} else {
				s.regs[sr1] |= sr1AF
			}
		}
	case sr1:
		// Only the fault flags can be cleared, by writing 0.
		s.regs[sr1] &= v | ^uint32(sr1Errors)
	case sr2:
		// Read only.
	default:
		s.regs[id] = v
	}
}

func (s *Sim) setCR1Locked(v uint32) {
	old := s.regs[cr1]
	if s.latch && s.regs[sr1]&sr1STOPF != 0 {
		s.latch = false
		s.regs[sr1] &^= sr1STOPF
	}
	if (old^v)&cr1ACK != 0 {
		if v&cr1ACK != 0 {
			s.ops = append(s.ops, Op{Kind: AckOn})
		} else {
			s.ops = append(s.ops, Op{Kind: AckOff})
		}
	}
	// START and STOP are cleared by the hardware once generated.
	s.regs[cr1] = v &^ (cr1START | cr1STOP)
	if v&cr1START != 0 {
		s.ops = append(s.ops, Op{Kind: Start})
		if s.modelLocked() {
			s.regs[sr1] &^= sr1TXE | sr1BTF
			s.regs[sr1] |= sr1SB
			s.regs[sr2] |= sr2MSL | sr2BUSY
			s.cur = nil
		}
	}
	if v&cr1STOP != 0 {
		s.ops = append(s.ops, Op{Kind: Stop})
		if s.modelLocked() {
			s.regs[sr1] &^= sr1TXE | sr1BTF
			s.regs[sr2] &^= sr2MSL | sr2BUSY | sr2TRA
			s.cur = nil
		}
	}
}

// addressLocked handles the address byte sent after a START.
func (s *Sim) addressLocked(b byte) {
	if !s.modelLocked() {
		return
	}
	t := s.targets[b>>1]
	if t == nil {
		s.regs[sr1] |= sr1AF
		return
	}
	s.cur = t
	s.reading = b&1 != 0
	t.Start(s.reading)
	s.regs[sr1] |= sr1ADDR
	if s.reading {
		s.regs[sr2] &^= sr2TRA
	} else {
		s.regs[sr2] |= sr2TRA
	}
}

func (s *Sim) addrClearedLocked() {
	if s.cur == nil {
		return
	}
	if s.reading {
		s.loadLocked(s.cur.Read())
	} else {
		s.regs[sr1] |= sr1TXE
	}
}

// loadLocked completes the reception of b; the master ACKs it according to
// the ACK bit at that time.
func (s *Sim) loadLocked(b byte) {
	s.regs[dr] = uint32(b)
	s.regs[sr1] |= sr1RXNE
	s.dataAck = s.regs[cr1]&cr1ACK != 0
}

func (s *Sim) modelLocked() bool {
	return len(s.targets) != 0
}

func (s *Sim) eventLocked() bool {
	c, f := s.regs[cr2], s.regs[sr1]
	if c&cr2ITEVTEN == 0 {
		return false
	}
	if f&(sr1SB|sr1ADDR|sr1ADD10|sr1STOPF|sr1BTF) != 0 {
		return true
	}
	return c&cr2ITBUFEN != 0 && f&(sr1TXE|sr1RXNE) != 0
}

func (s *Sim) errorLocked() bool {
	return s.regs[cr2]&cr2ITERREN != 0 && s.regs[sr1]&sr1Errors != 0
}

var _ mmio.Register = reg{}
