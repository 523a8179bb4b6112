// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cbus exposes an STM32 I²C peripheral as a periph i2c.Bus.
//
// Transactions run on the interrupt driven engine; Tx blocks the calling
// goroutine until the completion event. When built with the stm32f4 tag, the
// three I²C peripherals are registered in i2creg as I2C1, I2C2 and I2C3.
package i2cbus
