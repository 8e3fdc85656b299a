// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is an example interrupt driven DesignWare I2C master that opens the
// adapters of a YAML board file and runs transfer commands on them.
//
//	dwi2c -board /etc/goes/i2c.yaml detect -a i2c0
//	dwi2c xfer -a i2c0 0x50 w 0 r 16
package main

import (
	"context"
	"flag"

	"github.com/platinasystems/dwi2c/cmd/adapters"
	"github.com/platinasystems/dwi2c/cmd/detect"
	"github.com/platinasystems/dwi2c/cmd/dump"
	"github.com/platinasystems/dwi2c/cmd/i2cd"
	"github.com/platinasystems/dwi2c/cmd/stats"
	"github.com/platinasystems/dwi2c/cmd/xfer"
	"github.com/platinasystems/dwi2c/internal/board"
	"github.com/platinasystems/dwi2c/internal/goes"
)

var Commands = goes.Selection{
	adapters.Name: adapters.Main,
	detect.Name:   detect.Main,
	dump.Name:     dump.Main,
	i2cd.Name:     i2cd.Main,
	stats.Name:    stats.Main,
	xfer.Name:     xfer.Main,
}

var boardFile = flag.String("board", board.DefaultFile,
	"YAML description of the adapters to open.")

func setup(ctx context.Context) (func(), error) {
	cfg, err := board.Load(*boardFile)
	if err != nil {
		return nil, err
	}
	b, err := cfg.Open(ctx)
	if err != nil {
		return nil, err
	}
	return func() { b.Close() }, nil
}

func main() {
	goes.Setup = setup
	Commands.Main()
}
