// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package port drives the STM32F4 general purpose I/O ports.
//
// A Port configures the mode, output type, speed, pull and alternate function
// of each of its 16 pins. Individual pins are also exposed as periph
// gpio.PinIO so they can be handed to device drivers.
//
// Datasheet
//
// https://www.st.com/resource/en/reference_manual/dm00031020.pdf
//
// Section 8: General-purpose I/Os (GPIO).
package port
