// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2cd

import (
	"bytes"
	"errors"
	"net"
	"net/rpc"
	"syscall"
	"testing"
	"time"

	"github.com/platinasystems/dwi2c/internal/dw"
	"github.com/platinasystems/dwi2c/internal/dwsim"
	"github.com/platinasystems/dwi2c/internal/i2c"
)

type conn struct {
	cmds [][]interface{}
	err  error
}

func (c *conn) Close() error { return nil }
func (c *conn) Err() error   { return c.err }

func (c *conn) Do(cmd string, args ...interface{}) (interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.cmds = append(c.cmds, append([]interface{}{cmd}, args...))
	return "OK", nil
}

func (c *conn) Send(cmd string, args ...interface{}) error {
	_, err := c.Do(cmd, args...)
	return err
}

func (c *conn) Flush() error                  { return c.err }
func (c *conn) Receive() (interface{}, error) { return nil, c.err }

func register(t *testing.T, name string) *dw.Adapter {
	t.Helper()
	sim := dwsim.New(0)
	sim.Add(0x50, dwsim.NewEEPROM([]byte{0xaa, 0xbb, 0xcc}))
	a := dw.New(sim, &dw.Config{Timeout: 5 * time.Second})
	a.Init()
	sim.Attach(a.Interrupt)
	if _, err := i2c.Register(name, a); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		i2c.Unregister(a)
		a.Close()
		sim.Close()
	})
	return a
}

func TestPublish(t *testing.T) {
	a := register(t, "i2cd-pub")
	c := new(conn)
	p := &Publisher{Conn: c}
	n, err := p.Publish(i2c.Adapters())
	if err != nil {
		t.Fatal(err)
	}
	if n != 14 {
		t.Errorf("%d fields != 14", n)
	}
	if len(c.cmds) != 1 {
		t.Fatalf("%d commands", len(c.cmds))
	}
	cmd := c.cmds[0]
	if cmd[0] != "HMSET" || cmd[1] != DefaultHash || len(cmd) != 2+2*14 {
		t.Errorf("%v", cmd)
	}
	if n, _ = p.Publish(i2c.Adapters()); n != 0 {
		t.Errorf("%d unchanged fields published", n)
	}
	if err = a.Transfer([]i2c.Msg{i2c.R(0x50, make([]byte, 1))}); err != nil {
		t.Fatal(err)
	}
	// transfers, ok, watchdogs, interrupts, rx_bytes
	if n, _ = p.Publish(i2c.Adapters()); n != 5 {
		t.Errorf("%d fields != 5: %v", n, c.cmds[len(c.cmds)-1])
	}
	c.err = errors.New("connection reset")
	a.Transfer([]i2c.Msg{i2c.R(0x50, make([]byte, 1))})
	if _, err = p.Publish(i2c.Adapters()); err == nil {
		t.Error("no error")
	}
}

func TestRPC(t *testing.T) {
	register(t, "i2cd-rpc")
	cli, srv := net.Pipe()
	go NewServer().ServeConn(srv)
	client := rpc.NewClient(cli)
	defer client.Close()

	buf := make([]byte, 2)
	err := Transfer(client, "i2cd-rpc", []i2c.Msg{
		i2c.W(0x50, 0x01),
		i2c.R(0x50, buf),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{0xbb, 0xcc}) {
		t.Errorf("%x != bbcc", buf)
	}
	err = Transfer(client, "i2cd-rpc", []i2c.Msg{i2c.R(0x51, buf)})
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("%v != %v", err, syscall.EIO)
	}
	if err = Transfer(client, "missing", []i2c.Msg{i2c.R(0x51, buf)}); err == nil {
		t.Error("transfer on missing adapter")
	}
}
