// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cbus

import (
	"fmt"
	"strconv"

	"periph.io/x/periph"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/stm32/f407"
	stm32i2c "periph.io/x/stm32/i2c"
	"periph.io/x/stm32/port"
)

// IRQPriority is the interrupt priority used by Open.
const IRQPriority = 8

// Open initializes I²C peripheral n of the STM32F407 at 100kHz, routes its
// pins and interrupts and returns it as a Bus.
//
// The application vector table must call f407.HandleI2CEvent and
// f407.HandleI2CError.
func Open(n int) (*Bus, error) {
	d, err := f407.I2C(n)
	if err != nil {
		return nil, err
	}
	scl, sda, err := f407.I2CPins(n)
	if err != nil {
		return nil, err
	}
	if err := port.ConfigureI2C(scl, sda, f407.AFI2C); err != nil {
		return nil, err
	}
	if err := d.Init(stm32i2c.Config{Speed: stm32i2c.StandardMode, ACK: true}); err != nil {
		return nil, err
	}
	d.SetEnabled(true)
	if err := d.SetIRQPriority(IRQPriority); err != nil {
		return nil, err
	}
	if err := d.EnableIRQ(true); err != nil {
		return nil, err
	}
	return New(d, scl, sda), nil
}

//

// driver implements periph.Driver.
type driver struct {
}

func (d *driver) String() string {
	return "stm32-i2c"
}

func (d *driver) Prerequisites() []string {
	return nil
}

func (d *driver) After() []string {
	return nil
}

func (d *driver) Init() (bool, error) {
	for n := 1; n <= 3; n++ {
		if err := i2creg.Register("I2C"+strconv.Itoa(n), nil, n, opener(n)); err != nil {
			return true, fmt.Errorf("i2cbus: %v", err)
		}
	}
	return true, nil
}

func opener(n int) i2creg.Opener {
	return func() (i2c.BusCloser, error) {
		b, err := Open(n)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func init() {
	if !disabled {
		periph.MustRegister(&driver{})
	}
}

var _ periph.Driver = &driver{}
