// Copyright 2023 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cbus

import (
	"testing"

	"periph.io/x/periph"
	"periph.io/x/periph/conn/i2c/i2creg"
)

func TestDriver(t *testing.T) {
	d := &driver{}
	if s := d.String(); s != "stm32-i2c" {
		t.Fatal(s)
	}
	if d.Prerequisites() != nil || d.After() != nil {
		t.Fatal("unexpected dependencies")
	}
	var _ periph.Driver = d
	if b, err := d.Init(); !b || err != nil {
		t.Fatalf("Init() = %t, %v", b, err)
	}
	defer func() {
		for _, n := range []string{"I2C1", "I2C2", "I2C3"} {
			if err := i2creg.Unregister(n); err != nil {
				t.Error(err)
			}
		}
	}()
	found := map[string]int{}
	for _, ref := range i2creg.All() {
		found[ref.Name] = ref.Number
	}
	for n, name := range []string{"I2C1", "I2C2", "I2C3"} {
		if num, ok := found[name]; !ok || num != n+1 {
			t.Fatalf("%s: %v", name, found)
		}
	}
	// Registering twice fails.
	if _, err := d.Init(); err == nil {
		t.Fatal("expected error")
	}
}
