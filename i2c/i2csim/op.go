// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2csim

import "fmt"

// Kind is the kind of bus action.
type Kind uint8

// Kinds.
const (
	Start Kind = iota
	Stop
	AckOn
	AckOff
	AddrClear
	Write
	Read
)

const kindNames = "StartStopAckOnAckOffAddrClearWriteRead"

var kindIndex = [...]uint8{0, 5, 9, 14, 20, 29, 34, 38}

func (k Kind) String() string {
	if int(k) < len(kindIndex)-1 {
		return kindNames[kindIndex[k]:kindIndex[k+1]]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Op is one logged bus action.
type Op struct {
	Kind Kind
	Data byte // Write and Read
	Ack  bool // Read: whether the byte was ACKed by the master
}

func (o Op) String() string {
	switch o.Kind {
	case Write:
		return fmt.Sprintf("Write(0x%02X)", o.Data)
	case Read:
		if o.Ack {
			return fmt.Sprintf("Read(0x%02X, ACK)", o.Data)
		}
		return fmt.Sprintf("Read(0x%02X, NACK)", o.Data)
	default:
		return o.Kind.String()
	}
}
