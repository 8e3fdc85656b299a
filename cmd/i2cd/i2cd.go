// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package i2cd provides the command that serves remote transfers on the
// registered adapters and publishes their counters to redis.
package i2cd

import (
	"context"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2cd"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
)

const (
	Name  = "i2cd"
	Usage = "[-addr ADDR] [-redis ADDR] [-hash KEY] [-interval DURATION]\n"
	Man   = `
Serve transfer requests on the registered adapters and, if -redis is given,
periodically write changed adapter counters as i2c.NAME.COUNTER fields of
the redis hash.

OPTIONS
	-addr ADDR
		RPC listen address, default: ` + i2cd.DefaultAddr + `
	-redis ADDR
		redis server address
	-hash KEY
		redis hash, default: ` + i2cd.DefaultHash + `
	-interval DURATION
		publish interval, default: 5s
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
	parm, args := parms.New(args, "-addr", "-redis", "-hash", "-interval")
	if len(args) > 0 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args)
	}
	d := &i2cd.Daemon{Addr: parm.ByName["-addr"]}
	if s := parm.ByName["-interval"]; len(s) > 0 {
		interval, err := time.ParseDuration(s)
		if err != nil {
			return goes.ErrorfWith(ctx, "-interval: %w", err)
		}
		d.Interval = interval
	}
	if s := parm.ByName["-redis"]; len(s) > 0 {
		conn, err := redis.Dial("tcp", s)
		if err != nil {
			return goes.ErrorfWith(ctx, "-redis: %w", err)
		}
		defer conn.Close()
		d.Pub = &i2cd.Publisher{Conn: conn, Hash: parm.ByName["-hash"]}
		log.Print("daemon", "info", "publish", s)
	}
	if err := d.Run(ctx); err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	return nil
}
