// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rcc drives the STM32F4 reset and clock control unit.
//
// It reports the frequency of the system clock and of the peripheral buses,
// which the other drivers use to compute their timing registers, and gates
// and resets the clock of individual peripherals.
//
// Datasheet
//
// https://www.st.com/resource/en/reference_manual/dm00031020.pdf
//
// Section 7: Reset and clock control (RCC).
package rcc
