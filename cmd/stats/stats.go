// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package stats provides the command to print adapter transfer counters.
package stats

import (
	"context"

	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/dwi2c/internal/i2cd"
	"github.com/platinasystems/flags"
	"gopkg.in/yaml.v2"
)

const (
	Name  = "stats"
	Usage = "[-nz] [ADAPTER]...\n"
	Man   = `
Print the transfer counters of the named, or all, controller adapters as
YAML, e.g.

	sim0:
	  transfers: 3
	  ok: 2
	  ...

OPTIONS
	-nz	omit counters that are zero
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
	flag, args := flags.New(args, "-nz")
	var l []*i2c.Registered
	if len(args) == 0 {
		l = i2c.Adapters()
	}
	for _, arg := range args {
		r, err := i2c.Lookup(arg)
		if err != nil {
			return goes.ErrorfWith(ctx, "%w", err)
		}
		l = append(l, r)
	}
	b, err := Marshal(l, flag.ByName["-nz"])
	if err != nil {
		return goes.ErrorfWith(ctx, "%w", err)
	}
	goes.OutputOf(ctx).Print(string(b))
	return ctx.Err()
}

// Marshal the counters of the adapters that keep them as YAML mappings
// keyed by adapter name.
func Marshal(l []*i2c.Registered, nonzero bool) ([]byte, error) {
	m := make(yaml.MapSlice, 0, len(l))
	for _, r := range l {
		st, ok := r.Adapter.(i2cd.Statser)
		if !ok {
			continue
		}
		if !nonzero {
			m = append(m, yaml.MapItem{Key: r.Name, Value: st.Stats()})
			continue
		}
		var counters yaml.MapSlice
		stats := st.Stats()
		stats.Each(func(name string, v uint64) {
			if v != 0 {
				counters = append(counters,
					yaml.MapItem{Key: name, Value: v})
			}
		})
		m = append(m, yaml.MapItem{Key: r.Name, Value: counters})
	}
	if len(m) == 0 {
		return nil, nil
	}
	return yaml.Marshal(m)
}
