// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package xfer provides the command to run a combined transfer.
package xfer

import (
	"context"
	"fmt"
	"net/rpc"
	"strconv"

	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/dwi2c/internal/i2cd"
	"github.com/platinasystems/parms"
)

const (
	Name  = "xfer"
	Usage = "[-a ADAPTER] [-remote HOST:PORT] ADDR [w BYTE...|r COUNT]...\n"
	Man   = `
Run the write and read messages as a single transaction with the target
at ADDR, e.g. write register offset 0 then read 2 bytes,

	xfer -a sim0 0x50 w 0 r 2

Read data is printed in hex, one line per read message.

OPTIONS
	-a ADAPTER
		bus index or name, default: the first registered adapter
	-remote HOST:PORT
		send the transaction to an i2cd server
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
	parm, args := parms.New(args, "-a", "-remote")
	msgs, err := Parse(args)
	if err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	name := parm.ByName["-a"]
	if remote := parm.ByName["-remote"]; len(remote) > 0 {
		client, err := rpc.Dial("tcp", remote)
		if err != nil {
			return goes.ErrorfWith(ctx, "%w", err)
		}
		defer client.Close()
		err = i2cd.Transfer(client, name, msgs)
		if err != nil {
			return goes.ErrorfWith(ctx, "%s: %v: %w", remote,
				i2c.Msgs(msgs), err)
		}
	} else {
		r, err := i2c.Lookup(name)
		if err != nil {
			return goes.ErrorfWith(ctx, "%w", err)
		}
		if err = r.Transfer(msgs); err != nil {
			return goes.ErrorfWith(ctx, "%s: %v: %w", r.Name,
				i2c.Msgs(msgs), err)
		}
	}
	o := goes.OutputOf(ctx)
	for _, m := range msgs {
		if m.IsRead() {
			o.Printf("% x\n", m.Buf)
		}
	}
	return ctx.Err()
}

// Parse ADDR [w BYTE...|r COUNT]... into messages. Bytes that directly
// follow ADDR are a write.
func Parse(args []string) ([]i2c.Msg, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("ADDR: missing")
	}
	addr, err := strconv.ParseUint(args[0], 0, 10)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid ADDR", args[0])
	}
	var msgs []i2c.Msg
	var w *i2c.Msg
	for i := 1; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "w":
			msgs = append(msgs, i2c.W(uint16(addr)))
			w = &msgs[len(msgs)-1]
		case "r":
			if i++; i == len(args) {
				return nil, fmt.Errorf("r: missing COUNT")
			}
			n, err := strconv.ParseUint(args[i], 0, 16)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("%s: invalid COUNT", args[i])
			}
			msgs = append(msgs, i2c.R(uint16(addr), make([]byte, n)))
			w = nil
		default:
			b, err := strconv.ParseUint(arg, 0, 8)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid BYTE", arg)
			}
			if w == nil {
				msgs = append(msgs, i2c.W(uint16(addr)))
				w = &msgs[len(msgs)-1]
			}
			w.Buf = append(w.Buf, byte(b))
		}
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("missing message")
	}
	for _, m := range msgs {
		if len(m.Buf) == 0 {
			return nil, fmt.Errorf("w: missing BYTE")
		}
	}
	return msgs, nil
}
