// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"periph.io/x/stm32/i2c/i2csim"
)

var kindColors = map[i2csim.Kind]color.NRGBA{
	i2csim.Start:     {0, 200, 0, 255},
	i2csim.Stop:      {220, 0, 0, 255},
	i2csim.AckOn:     {240, 240, 0, 255},
	i2csim.AckOff:    {240, 140, 0, 255},
	i2csim.AddrClear: {0, 80, 255, 255},
	i2csim.Write:     {0, 220, 220, 255},
	i2csim.Read:      {200, 0, 200, 255},
}

// printOps writes one line per op, prefixed with a colored block when color
// is true.
func printOps(w io.Writer, ops []i2csim.Op, color bool) error {
	var buf bytes.Buffer
	for _, op := range ops {
		if color {
			_, _ = buf.WriteString(ansi256.Default.Block(kindColors[op.Kind]))
			_, _ = buf.WriteString("\033[0m ")
		} else {
			_, _ = buf.WriteString("  ")
		}
		_, _ = buf.WriteString(op.String())
		_ = buf.WriteByte('\n')
	}
	_, err := buf.WriteTo(w)
	return err
}
