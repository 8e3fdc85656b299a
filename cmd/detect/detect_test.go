// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package detect

import (
	"context"
	"strings"
	"testing"

	"github.com/platinasystems/dwi2c/internal/board"
	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
)

const simBoard = `
adapters:
- name: detect-sim0
  driver: sim
  devices:
  - {addr: 0x50, model: eeprom}
  - {addr: 0x57, model: eeprom}
`

func TestDetect(t *testing.T) {
	cfg, err := board.Parse([]byte(simBoard))
	if err != nil {
		t.Fatal(err)
	}
	b, err := cfg.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	r, _ := i2c.ByName("detect-sim0")
	found, err := Scan(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 || !found[0x50] || !found[0x57] {
		t.Errorf("%v", found)
	}

	w := new(strings.Builder)
	ctx := goes.WithOutput(context.Background(), w)
	ctx = goes.WithPath(goes.WithPath(ctx, "dwi2c"), Name)
	if err = Main(ctx, "-a", "detect-sim0"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(w.String(), "\n")
	if n := len(lines); n != 10 {
		t.Fatalf("%d lines: %q", n, lines)
	}
	for i, want := range map[int]string{
		0: "     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f",
		1: "00:          -- -- -- -- -- -- -- -- -- -- -- -- --",
		6: "50: 50 -- -- -- -- -- -- 57 -- -- -- -- -- -- -- --",
		8: "70: -- -- -- -- -- -- -- --",
		9: "",
	} {
		if lines[i] != want {
			t.Errorf("line %d: %q != %q", i, lines[i], want)
		}
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, nil); err != context.Canceled {
		t.Errorf("%v != %v", err, context.Canceled)
	}
}
