// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package stm32 is for documentation only. Explains how the drivers fit
// together.
//
// Layout
//
// mmio is the register access layer every driver is written against. rcc,
// nvic and port drive the clock controller, the interrupt controller and the
// GPIO ports. i2c is the interrupt driven I²C master and slave engine.
//
// f407 holds the STM32F407 memory map and the single instance of each
// peripheral.
//
// Interrupts
//
// The application vector table must forward the I²C event and error
// interrupts:
//
//  f407.HandleI2CEvent(1)
//  f407.HandleI2CError(1)
//
// periph
//
// Building with the stm32f4 tag registers I2C1 to I2C3 in i2creg, so devices
// written against periph.io/x/periph/conn/i2c can be used unchanged:
//
//  go build -tags stm32f4
//
// Testing
//
// i2c/i2csim simulates the I²C registers, including the status flag clear
// sequences, so the engine is tested on the host. cmd/i2ctrace prints the
// bus activity of a transaction against the simulator.
package stm32
