// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2csim

import "sync"

// Target is a device on the simulated bus.
//
// Methods are called with the simulator locked and must not access it.
type Target interface {
	// Start is called when the target is addressed.
	Start(read bool)
	// Write receives a byte from the master and returns whether it is ACKed.
	Write(b byte) bool
	// Read returns the next byte to send to the master.
	Read() byte
}

// Memory is a Target modeled after a small EEPROM.
//
// The first byte written after a START sets the address pointer; the
// following bytes are stored at the pointer. Reads return the bytes at the
// pointer. The pointer wraps around.
type Memory struct {
	mu    sync.Mutex
	Data  [256]byte
	ptr   uint8
	first bool
	// ReadOnly NACKs every data byte written.
	ReadOnly bool
}

// Start implements Target.
func (m *Memory) Start(read bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.first = !read
}

// Write implements Target.
func (m *Memory) Write(b byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.first {
		m.first = false
		m.ptr = b
		return true
	}
	if m.ReadOnly {
		return false
	}
	m.Data[m.ptr] = b
	m.ptr++
	return true
}

// Read implements Target.
func (m *Memory) Read() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.Data[m.ptr]
	m.ptr++
	return b
}

var _ Target = &Memory{}
