// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

import (
	"errors"
	"fmt"
)

// Errors returned by the driver. Fault events map to them via Event.Err.
var (
	ErrInvalidConfig   = errors.New("i2c: invalid configuration")
	ErrBusy            = errors.New("i2c: a transfer is already in progress")
	ErrBusError        = errors.New("i2c: bus error")
	ErrArbitrationLost = errors.New("i2c: arbitration lost")
	ErrAckFailure      = errors.New("i2c: acknowledge failure")
	ErrOverrun         = errors.New("i2c: overrun or underrun")
	ErrTimeout         = errors.New("i2c: timeout")
)

// Event is passed to the Callback on each completion or fault.
type Event uint8

// Events.
const (
	EventTxComplete Event = iota
	EventRxComplete
	EventStop
	EventBusError
	EventArbitrationLost
	EventAckFailure
	EventOverrun
	EventTimeout
	EventDataRequest // slave: the master wants a byte, call SlaveSend
	EventDataReceive // slave: a byte arrived, call SlaveReceive
	EventAddrMatch   // slave: own address matched
	EventGeneralCall // slave: general call address matched
)

var eventNames = [...]string{
	"TxComplete",
	"RxComplete",
	"Stop",
	"BusError",
	"ArbitrationLost",
	"AckFailure",
	"Overrun",
	"Timeout",
	"DataRequest",
	"DataReceive",
	"AddrMatch",
	"GeneralCall",
}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

// Err returns the error matching a fault event, or nil.
func (e Event) Err() error {
	switch e {
	case EventBusError:
		return ErrBusError
	case EventArbitrationLost:
		return ErrArbitrationLost
	case EventAckFailure:
		return ErrAckFailure
	case EventOverrun:
		return ErrOverrun
	case EventTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

// Callback is called from interrupt context on each Event.
type Callback func(d *Dev, e Event)

// faults is processed in SR1 bit order.
var faults = [...]struct {
	flag uint32
	ev   Event
}{
	{sr1BERR, EventBusError},
	{sr1ARLO, EventArbitrationLost},
	{sr1AF, EventAckFailure},
	{sr1OVR, EventOverrun},
	{sr1TIMEOUT, EventTimeout},
}

// HandleError services the error interrupt.
//
// Each fault flag set is cleared and reported once, in SR1 bit order. The
// transfer state is left untouched.
func (d *Dev) HandleError() {
	if d.r.CR2.Get()&cr2ITERREN == 0 {
		return
	}
	sr1 := d.r.SR1.Get()
	for _, f := range faults {
		if sr1&f.flag != 0 {
			// rc_w0: writing 1 to the other bits leaves them alone.
			d.r.SR1.Set(^f.flag & 0xFFFF)
			d.emit(f.ev)
		}
	}
}
