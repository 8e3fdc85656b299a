// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package uio maps a controller bound to the Linux userspace I/O driver
// and delivers its interrupts.
package uio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/platinasystems/dwi2c/internal/mmio"
)

var Sysfs = "/sys/class/uio"

type Device struct {
	*mmio.Block
	name string

	f    io.ReadWriteCloser
	once sync.Once

	events atomic.Uint64
	count  atomic.Uint32
}

// Open /dev/uioN and map its first memory region.
func Open(minor int) (*Device, error) {
	name := fmt.Sprint("uio", minor)
	size, err := mapSize(name, 0)
	if err != nil {
		return nil, err
	}
	fn := filepath.Join("/dev", name)
	blk, err := mmio.Map(fn, 0, size)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(fn, os.O_RDWR, 0)
	if err != nil {
		blk.Close()
		return nil, err
	}
	return &Device{Block: blk, name: name, f: f}, nil
}

// mapSize reads /sys/class/uio/uioN/maps/mapM/size; mapping M is at offset
// M pages of /dev/uioN.
func mapSize(name string, m int) (int, error) {
	fn := filepath.Join(Sysfs, name, "maps", fmt.Sprint("map", m), "size")
	b, err := os.ReadFile(fn)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	size, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	return int(size), nil
}

func (d *Device) String() string { return d.name }

// Serve unmasks the interrupt then blocks for the next event and calls the
// handler, until the context is done or the device fails.
func (d *Device) Serve(ctx context.Context, handler func()) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			d.closeFile()
		case <-stop:
		}
	}()
	var b [4]byte
	for {
		binary.LittleEndian.PutUint32(b[:], 1)
		if _, err := d.f.Write(b[:]); err != nil {
			return d.serveErr(ctx, err)
		}
		if _, err := io.ReadFull(d.f, b[:]); err != nil {
			return d.serveErr(ctx, err)
		}
		d.count.Store(binary.LittleEndian.Uint32(b[:]))
		d.events.Add(1)
		handler()
	}
}

func (d *Device) serveErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w", d.name, err)
}

// Events returns the number of interrupts served.
func (d *Device) Events() uint64 { return d.events.Load() }

// Count returns the kernel's interrupt count at the last event.
func (d *Device) Count() uint32 { return d.count.Load() }

func (d *Device) closeFile() (err error) {
	d.once.Do(func() {
		err = d.f.Close()
	})
	return
}

func (d *Device) Close() error {
	err := d.closeFile()
	if d.Block != nil {
		if xerr := d.Block.Close(); err == nil {
			err = xerr
		}
	}
	return err
}
