// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package f407 is the STM32F407 memory map.
//
// It holds the one instance of each peripheral driver, looked up by identity.
// Constructing the instances does not touch the hardware; the registers are
// only accessed once a driver method is called, so the package can be
// imported on any host.
package f407

import (
	"fmt"

	"periph.io/x/stm32/i2c"
	"periph.io/x/stm32/nvic"
	"periph.io/x/stm32/port"
	"periph.io/x/stm32/rcc"
)

// Peripheral base addresses.
const (
	RCCBase   = 0x40023800
	GPIOABase = 0x40020000
	I2C1Base  = 0x40005400
	I2C2Base  = 0x40005800
	I2C3Base  = 0x40005C00

	// gpioStride separates consecutive GPIO ports.
	gpioStride = 0x400
)

// Interrupt numbers.
const (
	I2C1EventIRQ = 31
	I2C1ErrorIRQ = 32
	I2C2EventIRQ = 33
	I2C2ErrorIRQ = 34
	I2C3EventIRQ = 72
	I2C3ErrorIRQ = 73
)

// AFI2C is the alternate function number of the I²C pins.
const AFI2C = 4

// RCC returns the clock controller, assuming an 8MHz crystal.
func RCC() *rcc.Dev {
	return clocks
}

// NVIC returns the interrupt controller.
func NVIC() *nvic.Dev {
	return irqs
}

// GPIO returns the port named by its letter, from 'A' to 'I'.
func GPIO(letter byte) (*port.Port, error) {
	if letter < 'A' || int(letter-'A') >= len(ports) {
		return nil, fmt.Errorf("f407: no GPIO port %q", letter)
	}
	return ports[letter-'A'], nil
}

// I2C returns the I²C peripheral n, from 1 to 3.
func I2C(n int) (*i2c.Dev, error) {
	if n < 1 || n > len(buses) {
		return nil, fmt.Errorf("f407: no I2C%d", n)
	}
	return buses[n-1], nil
}

// I2CPins returns the default SCL and SDA pins of I²C peripheral n.
//
// The pins are not configured; see port.ConfigureI2C with AFI2C.
func I2CPins(n int) (scl, sda *port.Pin, err error) {
	if n < 1 || n > len(i2cPins) {
		return nil, nil, fmt.Errorf("f407: no I2C%d", n)
	}
	p := i2cPins[n-1]
	return ports[p.sclPort-'A'].Pin(p.scl), ports[p.sdaPort-'A'].Pin(p.sda), nil
}

// HandleI2CEvent is the event interrupt vector of I²C peripheral n.
func HandleI2CEvent(n int) {
	if n >= 1 && n <= len(buses) {
		buses[n-1].HandleEvent()
	}
}

// HandleI2CError is the error interrupt vector of I²C peripheral n.
func HandleI2CError(n int) {
	if n >= 1 && n <= len(buses) {
		buses[n-1].HandleError()
	}
}

//

var (
	clocks = rcc.New(rcc.NewRegs(RCCBase), rcc.DefaultHSE)
	irqs   = nvic.New(nvic.NewRegs())
	ports  = newPorts()
	buses  = [...]*i2c.Dev{
		newI2C(rcc.I2C1, I2C1Base, I2C1EventIRQ, I2C1ErrorIRQ),
		newI2C(rcc.I2C2, I2C2Base, I2C2EventIRQ, I2C2ErrorIRQ),
		newI2C(rcc.I2C3, I2C3Base, I2C3EventIRQ, I2C3ErrorIRQ),
	}
)

var i2cPins = [...]struct {
	sclPort byte
	scl     int
	sdaPort byte
	sda     int
}{
	{'B', 6, 'B', 7},
	{'B', 10, 'B', 11},
	{'A', 8, 'C', 9},
}

func newPorts() [9]*port.Port {
	ids := [...]rcc.Peripheral{
		rcc.GPIOA, rcc.GPIOB, rcc.GPIOC, rcc.GPIOD, rcc.GPIOE,
		rcc.GPIOF, rcc.GPIOG, rcc.GPIOH, rcc.GPIOI,
	}
	var out [9]*port.Port
	for i, id := range ids {
		out[i] = port.New(id, port.NewRegs(GPIOABase+uintptr(i)*gpioStride), clocks)
	}
	return out
}

func newI2C(id rcc.Peripheral, base uintptr, ev, er int) *i2c.Dev {
	inst := i2c.Instance{Clock: id, EventIRQ: ev, ErrorIRQ: er}
	return i2c.New(inst, i2c.NewRegs(base), clocks, irqs)
}
