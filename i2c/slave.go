// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2c

// SlaveSend writes the next byte to send to the master.
//
// It is meant to be called from the Callback on EventDataRequest.
func (d *Dev) SlaveSend(b byte) {
	d.r.DR.Set(uint32(b))
}

// SlaveReceive returns the byte sent by the master.
//
// It is meant to be called from the Callback on EventDataReceive. Not reading
// the byte leaves the event pending.
func (d *Dev) SlaveReceive() byte {
	return byte(d.r.DR.Get())
}
