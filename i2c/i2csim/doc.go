// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2csim simulates the register block of an STM32F4 I²C peripheral.
//
// The registers honor the hardware flag clear sequences: ADDR is cleared by
// reading SR1 then SR2, SB by reading SR1 then writing DR, STOPF by reading
// SR1 then writing CR1, RXNE by reading DR and the fault flags by writing 0.
// Every bus level action is appended to an op log.
//
// Without targets the flags only change when the test raises them. Once a
// target is attached, the simulator also plays the bus: a START raises SB,
// the address byte is matched against the targets and data bytes flow to and
// from the addressed target. Run then dispatches the interrupt handlers the
// way the interrupt controller would.
package i2csim
