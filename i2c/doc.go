// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2c drives the STM32F4 I²C controller.
//
// The driver is interrupt driven. StartSend and StartReceive record a
// transfer and issue a START condition, then return immediately. The
// platform's interrupt vectors must call HandleEvent for the event interrupt
// and HandleError for the error interrupt of the peripheral; these advance the
// transfer one hardware event at a time and report completion and faults
// through the Callback.
//
// Concurrency
//
// There is a single transfer context per peripheral. It is only written by
// StartSend and StartReceive while the state is Ready, and by the interrupt
// handlers afterwards until they set it back to Ready. Calls from multiple
// goroutines must be serialized by the caller; i2cbus.Bus does that.
//
// The Callback runs in interrupt context. It must not block; heavier work has
// to be deferred to the main loop, for example via a buffered channel.
//
// Faults
//
// Bus error, arbitration loss, acknowledge failure, overrun and timeout are
// reported once each through the Callback and are never retried. The
// application must call CloseSend or CloseReceive, optionally followed by
// Stop or Init, before starting another transfer.
//
// Datasheet
//
// https://www.st.com/resource/en/reference_manual/dm00031020.pdf
//
// Section 27: Inter-integrated circuit (I2C) interface.
package i2c
