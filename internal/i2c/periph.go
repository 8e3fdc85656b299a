// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"math"
	"syscall"

	pi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Speeder is implemented by adapters with a programmable bus clock.
type Speeder interface {
	SetSpeed(hz uint32) error
}

// Periph wraps an adapter as a periph.io bus so periph device drivers
// may run on it.
type Periph struct {
	Name string
	Adapter
}

var _ pi2c.BusCloser = (*Periph)(nil)

func (p *Periph) String() string { return p.Name }

// Tx is WriteRead; periph calls it with the target address per device.
func (p *Periph) Tx(addr uint16, w, r []byte) error {
	return WriteRead(p.Adapter, addr, w, r)
}

func (p *Periph) SetSpeed(f physic.Frequency) error {
	s, ok := p.Adapter.(Speeder)
	if !ok {
		return syscall.ENOTSUP
	}
	if f < physic.Hertz || f/physic.Hertz > math.MaxUint32 {
		return syscall.EINVAL
	}
	return s.SetSpeed(uint32(f / physic.Hertz))
}

// Close is a no-op; adapters live in the registry.
func (p *Periph) Close() error { return nil }
