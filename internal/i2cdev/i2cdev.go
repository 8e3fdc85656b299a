// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package i2cdev adapts a kernel owned /dev/i2c-N bus to the i2c.Adapter
// interface so that the same commands run on it and on the DesignWare
// engine.
package i2cdev

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/platinasystems/dwi2c/internal/i2c"
	linux "github.com/platinasystems/i2c"
)

type sender interface {
	Send([]linux.Message) error
	Close() error
}

type Adapter struct {
	Index int

	mu  sync.Mutex
	bus sender
}

// Open /dev/i2c-INDEX.
func Open(index int) (*Adapter, error) {
	bus := new(linux.Bus)
	if err := bus.Open(index); err != nil {
		return nil, err
	}
	return &Adapter{Index: index, bus: bus}, nil
}

func (a *Adapter) String() string {
	return fmt.Sprint("/dev/i2c-", a.Index)
}

// Transfer the messages with a single I2C_RDWR ioctl. The kernel's NACK
// results, ENXIO and EREMOTEIO, are returned as EIO.
func (a *Adapter) Transfer(msgs []i2c.Msg) error {
	if len(msgs) == 0 || len(msgs) > linux.SendMaxMsgs {
		return syscall.EINVAL
	}
	ms := make([]linux.Message, len(msgs))
	for i, m := range msgs {
		if len(m.Buf) == 0 {
			return syscall.EINVAL
		}
		ms[i] = linux.Message{
			Address: m.Addr,
			Data:    m.Buf,
		}
		if m.IsRead() {
			ms[i].Flags |= linux.ReadData
		}
		if m.Addr > 0x7f {
			ms[i].Flags |= linux.TenBit
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bus == nil {
		return syscall.ENODEV
	}
	err := a.bus.Send(ms)
	switch err {
	case syscall.ENXIO, syscall.EREMOTEIO:
		err = syscall.EIO
	}
	return err
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bus == nil {
		return nil
	}
	err := a.bus.Close()
	a.bus = nil
	return err
}
