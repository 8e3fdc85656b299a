// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dump provides the command to print the registers of a target.
package dump

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/parms"
)

const (
	Name  = "dump"
	Usage = "[-a ADAPTER] [-n COUNT] ADDR [OFFSET]\n"
	Man   = `
Write the one byte OFFSET (default 0) then read COUNT (default 256) bytes
from the target at ADDR as a single transaction and print them as rows of
16 hex bytes followed by their ASCII.

OPTIONS
	-a ADAPTER
		bus index or name, default: the first registered adapter
	-n COUNT
		number of bytes to read
`
	DefaultCount = 256
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
	parm, args := parms.New(args, "-a", "-n")
	var addr, offset, count uint64 = 0, 0, DefaultCount
	var err error
	switch len(args) {
	case 0:
		return goes.ErrorfWith(ctx, "ADDR: missing")
	case 2:
		if offset, err = strconv.ParseUint(args[1], 0, 8); err != nil {
			return goes.ErrorfWith(ctx, "%s: invalid OFFSET", args[1])
		}
		fallthrough
	case 1:
		if addr, err = strconv.ParseUint(args[0], 0, 10); err != nil {
			return goes.ErrorfWith(ctx, "%s: invalid ADDR", args[0])
		}
	default:
		return goes.ErrorfWith(ctx, "%v: unexpected", args[2:])
	}
	if s := parm.ByName["-n"]; len(s) > 0 {
		count, err = strconv.ParseUint(s, 0, 16)
		if err != nil || count == 0 {
			return goes.ErrorfWith(ctx, "%s: invalid COUNT", s)
		}
	}
	r, err := i2c.Lookup(parm.ByName["-a"])
	if err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	buf := make([]byte, count)
	err = i2c.WriteRead(r, uint16(addr), []byte{byte(offset)}, buf)
	if err != nil {
		return goes.ErrorfWith(ctx, "%s: %#x: %w", r.Name, addr, err)
	}
	o := goes.OutputOf(ctx)
	o.Print(Hex(int(offset), buf))
	return ctx.Err()
}

// Hex formats buf as rows of 16 bytes prefixed by their offset and followed
// by their printable ASCII.
func Hex(offset int, buf []byte) string {
	sb := new(strings.Builder)
	for i := 0; i < len(buf); i += 16 {
		row := buf[i:]
		if len(row) > 16 {
			row = row[:16]
		}
		fmt.Fprintf(sb, "%02x: ", offset+i)
		for _, b := range row {
			fmt.Fprintf(sb, "%02x ", b)
		}
		sb.WriteString(strings.Repeat("   ", 16-len(row)))
		sb.WriteString("   ")
		for _, b := range row {
			if b < 0x7e && b > 0x1f {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
