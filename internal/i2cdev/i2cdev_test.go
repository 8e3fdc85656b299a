// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2cdev

import (
	"errors"
	"syscall"
	"testing"

	"github.com/platinasystems/dwi2c/internal/i2c"
	linux "github.com/platinasystems/i2c"
)

type bus struct {
	sent   [][]linux.Message
	err    error
	closed bool
}

func (b *bus) Send(ms []linux.Message) error {
	b.sent = append(b.sent, ms)
	if b.err != nil {
		return b.err
	}
	for _, m := range ms {
		if m.Flags&linux.ReadData != 0 {
			for i := range m.Data {
				m.Data[i] = byte(i + 1)
			}
		}
	}
	return nil
}

func (b *bus) Close() error {
	b.closed = true
	return nil
}

func TestTransfer(t *testing.T) {
	b := new(bus)
	a := &Adapter{Index: 3, bus: b}
	buf := make([]byte, 2)
	err := a.Transfer([]i2c.Msg{i2c.W(0x50, 0x00), i2c.R(0x50, buf)})
	if err != nil {
		t.Fatal(err)
	}
	if len(b.sent) != 1 || len(b.sent[0]) != 2 {
		t.Fatalf("%v", b.sent)
	}
	if m := b.sent[0][0]; m.Address != 0x50 || m.Flags != 0 {
		t.Errorf("%+v", m)
	}
	if m := b.sent[0][1]; m.Flags != linux.ReadData {
		t.Errorf("%+v", m)
	}
	if buf[0] != 1 || buf[1] != 2 {
		t.Errorf("%x", buf)
	}
	if s := a.String(); s != "/dev/i2c-3" {
		t.Errorf("%q != %q", s, "/dev/i2c-3")
	}
}

func TestErrors(t *testing.T) {
	b := new(bus)
	a := &Adapter{bus: b}
	for _, x := range []struct {
		msgs []i2c.Msg
		err  error
		want error
	}{
		{nil, nil, syscall.EINVAL},
		{[]i2c.Msg{i2c.W(0x50)}, nil, syscall.EINVAL},
		{[]i2c.Msg{i2c.W(0x50, 0)}, syscall.ENXIO, syscall.EIO},
		{[]i2c.Msg{i2c.W(0x50, 0)}, syscall.EREMOTEIO, syscall.EIO},
		{[]i2c.Msg{i2c.W(0x50, 0)}, syscall.EAGAIN, syscall.EAGAIN},
		{[]i2c.Msg{i2c.W(0x50, 0)}, syscall.ETIMEDOUT, syscall.ETIMEDOUT},
	} {
		b.err = x.err
		if err := a.Transfer(x.msgs); !errors.Is(err, x.want) {
			t.Errorf("%v: %v != %v", x.err, err, x.want)
		}
	}
	if err := a.Close(); err != nil || !b.closed {
		t.Fatal("not closed", err)
	}
	err := a.Transfer([]i2c.Msg{i2c.W(0x50, 0)})
	if !errors.Is(err, syscall.ENODEV) {
		t.Errorf("%v != %v", err, syscall.ENODEV)
	}
}
