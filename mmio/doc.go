// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mmio is the register access capability used by the peripheral
// drivers.
//
// Drivers never dereference peripheral addresses themselves. They receive a
// set of Register values, so the same driver code runs against the real
// memory mapped registers (Reg32) or against a simulated register block in
// unit tests (Word, or a custom Register implementation that models the
// hardware side effects of reads and writes).
package mmio
