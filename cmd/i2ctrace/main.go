// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// i2ctrace runs an I²C write and read back against a simulated STM32F407
// I²C peripheral and prints the resulting bus activity.
//
// A memory device answers at address 0x50; its byte N holds N. The first
// byte written sets the memory address pointer.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
	stm32i2c "periph.io/x/stm32/i2c"
	"periph.io/x/stm32/i2c/i2cbus"
	"periph.io/x/stm32/i2c/i2csim"
	"periph.io/x/stm32/mmio"
	"periph.io/x/stm32/rcc"
)

// memAddr is where the simulated memory answers.
const memAddr = 0x50

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	addr := flag.Uint("addr", memAddr, "7 bits address of the target")
	speed := flag.Int("speed", 100, "bus speed in kHz, up to 400")
	duty := flag.Bool("duty169", false, "use the 16:9 fast mode duty cycle")
	pclk := flag.Int("pclk", 42, "APB1 clock in MHz")
	write := flag.String("write", "00", "hex encoded bytes to write")
	read := flag.Int("read", 4, "number of bytes to read after a repeated start")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *addr > 0x7F {
		return fmt.Errorf("invalid address %#x", *addr)
	}
	if *read < 0 {
		return errors.New("-read must be positive")
	}
	if *pclk < 1 || *pclk > 127 {
		return fmt.Errorf("invalid APB1 clock %dMHz", *pclk)
	}
	w, err := hex.DecodeString(*write)
	if err != nil {
		return fmt.Errorf("-write: %v", err)
	}

	clk := newClock(*pclk)
	cfg := stm32i2c.Config{Speed: physic.Frequency(*speed) * physic.KiloHertz, ACK: true}
	if *duty {
		cfg.Duty = stm32i2c.Duty16_9
	}
	t, err := stm32i2c.ComputeTiming(clk.PCLK1(), cfg)
	if err != nil {
		return err
	}
	log.Printf("SYSCLK %s HCLK %s", clk.SysClk(), clk.HCLK())

	s := i2csim.New()
	m := &i2csim.Memory{}
	for i := range m.Data {
		m.Data[i] = byte(i)
	}
	s.Attach(memAddr, m)
	regs := &stm32i2c.Regs{
		CR1: s.CR1, CR2: s.CR2, OAR1: s.OAR1, OAR2: s.OAR2, DR: s.DR,
		SR1: s.SR1, SR2: s.SR2, CCR: s.CCR, TRISE: s.TRISE,
	}
	d := stm32i2c.New(stm32i2c.Instance{Clock: rcc.I2C1}, regs, clk, nil)
	if err := d.Init(cfg); err != nil {
		return err
	}
	d.SetEnabled(true)
	b := i2cbus.New(d, nil, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx, d.HandleEvent, d.HandleError)
	}()
	defer func() {
		cancel()
		<-done
	}()

	out := colorable.NewColorableStdout()
	color := isatty.IsTerminal(os.Stdout.Fd())
	fmt.Fprintf(out, "%s @ %s: FREQ=%d CCR=%#04x TRISE=%d SCL=%s\n", d, clk.PCLK1(), t.FREQ, t.CCR, t.TRISE, t.SCL)

	dev := &i2c.Dev{Addr: uint16(*addr), Bus: b}
	r := make([]byte, *read)
	log.Printf("Tx(%#02x, %x, %d)", *addr, w, len(r))
	txErr := dev.Tx(w, r)
	if err := printOps(out, s.Ops(), color); err != nil {
		return err
	}
	if txErr != nil {
		return txErr
	}
	if len(r) != 0 {
		fmt.Fprintf(out, "Read: %s\n", hex.EncodeToString(r))
	}
	return nil
}

// newClock returns a clock controller over plain memory set up so that
// APB1 runs at mhz: 8MHz HSE / 8 * 4*mhz / 2, then AHB /1 and APB1 /2.
func newClock(mhz int) *rcc.Dev {
	r := &rcc.Regs{
		CR:       &mmio.Word{},
		PLLCFGR:  &mmio.Word{},
		CFGR:     &mmio.Word{},
		AHB1RSTR: &mmio.Word{},
		APB1RSTR: &mmio.Word{},
		APB2RSTR: &mmio.Word{},
		AHB1ENR:  &mmio.Word{},
		APB1ENR:  &mmio.Word{},
		APB2ENR:  &mmio.Word{},
	}
	r.PLLCFGR.Set(1<<22 | uint32(4*mhz)<<6 | 8)
	r.CFGR.Set(4<<10 | 2<<2)
	return rcc.New(r, rcc.DefaultHSE)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "i2ctrace: %s.\n", err)
		os.Exit(1)
	}
}
