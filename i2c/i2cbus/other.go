// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !stm32f4
// +build !stm32f4

package i2cbus

// The memory map is only valid on the STM32F4 family.
const disabled = true
