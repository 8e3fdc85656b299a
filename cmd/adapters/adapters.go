// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package adapters provides the command to list registered adapters.
package adapters

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/platinasystems/dwi2c/internal/dw"
	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/dwi2c/internal/i2cdev"
)

const (
	Name  = "adapters"
	Usage = ""
	Man   = `
List the bus index, name and type of each registered adapter.
`
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
	if len(args) > 0 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args)
	}
	w := tabwriter.NewWriter(goes.OutputOf(ctx), 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE")
	for id, r := range i2c.Adapters() {
		fmt.Fprintf(w, "%d\t%s\t%s\n", id, r.Name, Type(r.Adapter))
	}
	w.Flush()
	return ctx.Err()
}

// Type describes the adapter implementation.
func Type(a i2c.Adapter) string {
	switch t := a.(type) {
	case *dw.Adapter:
		cfg := t.Config()
		return fmt.Sprintf("designware %v fifo %d/%d", cfg.Speed,
			cfg.TxFifoDepth, cfg.RxFifoDepth)
	case *i2cdev.Adapter:
		return fmt.Sprint("i2c-dev /dev/i2c-", t.Index)
	}
	return fmt.Sprintf("%T", a)
}
