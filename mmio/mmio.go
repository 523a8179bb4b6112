// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mmio

import (
	"strconv"
	"sync/atomic"
	"unsafe"
)

// Register is a 32 bits peripheral register.
//
// Get and Set must not be elided or reordered by the implementation; reads
// and writes of status registers have side effects on most peripherals.
type Register interface {
	Get() uint32
	Set(v uint32)
}

// HasBits returns true if any of the bits in mask is set.
func HasBits(r Register, mask uint32) bool {
	return r.Get()&mask != 0
}

// SetBits does a read-modify-write to set the bits in mask.
func SetBits(r Register, mask uint32) {
	r.Set(r.Get() | mask)
}

// ClearBits does a read-modify-write to clear the bits in mask.
func ClearBits(r Register, mask uint32) {
	r.Set(r.Get() &^ mask)
}

// ReplaceBits replaces the field mask<<pos with v<<pos.
//
// mask is the unshifted field mask, e.g. 0x3 for a 2 bits field.
func ReplaceBits(r Register, v, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (v&mask)<<pos)
}

// Field returns the unshifted value of the field mask<<pos.
func Field(r Register, mask uint32, pos uint8) uint32 {
	return (r.Get() >> pos) & mask
}

// Reg32 is a memory mapped register at an absolute address.
//
// Accesses use atomic loads and stores so the compiler keeps every access.
type Reg32 uintptr

// Get implements Register.
func (r Reg32) Get() uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(uintptr(r))))
}

// Set implements Register.
func (r Reg32) Set(v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(uintptr(r))), v)
}

func (r Reg32) String() string {
	return "0x" + strconv.FormatUint(uint64(r), 16)
}

// Word is a Register backed by plain memory.
//
// It has no side effects and is useful to stand in for registers that only
// hold configuration.
type Word struct {
	v uint32
}

// Get implements Register.
func (w *Word) Get() uint32 {
	return atomic.LoadUint32(&w.v)
}

// Set implements Register.
func (w *Word) Set(v uint32) {
	atomic.StoreUint32(&w.v, v)
}

var _ Register = Reg32(0)
var _ Register = &Word{}
