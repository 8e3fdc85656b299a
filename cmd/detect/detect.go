// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package detect provides the command to scan an adapter for targets.
package detect

import (
	"context"

	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/parms"
)

const (
	Name  = "detect"
	Usage = "[-a ADAPTER]\n"
	Man   = `
Probe each 7-bit address from 0x03 through 0x77 with a one byte read and
print a table of the targets that acknowledge, e.g.

	     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f
	00:          -- -- -- -- -- -- -- -- -- -- -- -- --
	...
	50: 50 -- -- -- -- -- -- -- -- -- -- -- -- -- -- --

OPTIONS
	-a ADAPTER
		bus index or name, default: the first registered adapter
`
	First = 0x03
	Last  = 0x77
)

func Main(ctx context.Context, args ...string) error {
	switch goes.Preemption(ctx) {
	case "":
	case "help":
		goes.Usage(ctx, Usage, Man)
		fallthrough
	default:
		return nil
	}
	parm, args := parms.New(args, "-a")
	if len(args) > 0 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args)
	}
	r, err := i2c.Lookup(parm.ByName["-a"])
	if err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	found, err := Scan(ctx, r)
	if err != nil {
		return goes.ErrorfWith(ctx, "%s: %w", r.Name, err)
	}
	o := goes.OutputOf(ctx)
	o.Print("   ")
	for i := 0; i < 16; i++ {
		o.Printf("  %x", i)
	}
	for addr := uint16(0); addr <= Last; addr++ {
		if addr%16 == 0 {
			o.Printf("\n%02x:", addr)
		}
		switch {
		case addr < First:
			o.Print("   ")
		case found[addr]:
			o.Printf(" %02x", addr)
		default:
			o.Print(" --")
		}
	}
	o.Println()
	return ctx.Err()
}

// Scan returns the set of probed addresses that acknowledged.
func Scan(ctx context.Context, a i2c.Adapter) (map[uint16]bool, error) {
	found := make(map[uint16]bool)
	for addr := uint16(First); addr <= Last; addr++ {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		ok, err := i2c.Probe(a, addr)
		if err != nil {
			return found, err
		}
		if ok {
			found[addr] = true
		}
	}
	return found, nil
}
