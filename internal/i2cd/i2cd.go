// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package i2cd serves transfer requests on the registered adapters to
// remote commands and publishes adapter statistics to a redis hash.
package i2cd

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"sync"
	"syscall"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/platinasystems/dwi2c/internal/dw"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/log"
)

const (
	DefaultAddr     = ":1233"
	DefaultHash     = "platina"
	DefaultInterval = 5 * time.Second
)

// Statser is implemented by adapters that keep transfer statistics.
type Statser interface {
	Stats() dw.Stats
}

var _ Statser = (*dw.Adapter)(nil)

// Publisher writes changed adapter counters as NAME.COUNTER fields of a
// redis hash.
type Publisher struct {
	Conn redis.Conn
	Hash string

	mu   sync.Mutex
	last map[string]uint64
}

// Publish returns the number of fields written.
func (p *Publisher) Publish(adapters []*i2c.Registered) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		p.last = make(map[string]uint64)
	}
	hash := p.Hash
	if len(hash) == 0 {
		hash = DefaultHash
	}
	args := redis.Args{}.Add(hash)
	changed := make(map[string]uint64)
	for _, r := range adapters {
		st, ok := r.Adapter.(Statser)
		if !ok {
			continue
		}
		stats := st.Stats()
		stats.Each(func(name string, v uint64) {
			field := fmt.Sprint("i2c.", r.Name, ".", name)
			if last, found := p.last[field]; found && last == v {
				return
			}
			changed[field] = v
			args = args.Add(field, v)
		})
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if _, err := p.Conn.Do("HMSET", args...); err != nil {
		return 0, err
	}
	for field, v := range changed {
		p.last[field] = v
	}
	return len(changed), nil
}

// Args is a transfer request on the adapter of the given bus index or name.
type Args struct {
	Adapter string
	Msgs    []i2c.Msg
}

// Reply returns the messages with read buffers filled and the
// negative errno of the result.
type Reply struct {
	Msgs  []i2c.Msg
	Errno int
}

// I2cReq is the RPC receiver.
type I2cReq struct{}

func (*I2cReq) Transfer(args *Args, reply *Reply) error {
	r, err := i2c.Lookup(args.Adapter)
	if err != nil {
		return err
	}
	err = r.Transfer(args.Msgs)
	reply.Msgs = args.Msgs
	reply.Errno = i2c.Errno(err)
	if err != nil {
		log.Print("err", args.Adapter, i2c.Msgs(args.Msgs), err)
	}
	return nil
}

// NewServer returns an RPC server with the I2cReq receiver.
func NewServer() *rpc.Server {
	srv := rpc.NewServer()
	srv.Register(new(I2cReq))
	return srv
}

// Transfer the messages through a daemon's RPC client; read messages are
// filled from the reply.
func Transfer(client *rpc.Client, adapter string, msgs []i2c.Msg) error {
	var reply Reply
	err := client.Call("I2cReq.Transfer", &Args{adapter, msgs}, &reply)
	if err != nil {
		return err
	}
	for i := range msgs {
		if i < len(reply.Msgs) && msgs[i].IsRead() {
			copy(msgs[i].Buf, reply.Msgs[i].Buf)
		}
	}
	if reply.Errno != 0 {
		return syscall.Errno(-reply.Errno)
	}
	return nil
}

type Daemon struct {
	Addr     string
	Interval time.Duration
	Pub      *Publisher
}

// Run serves requests and publishes statistics until the context is done.
func (d *Daemon) Run(ctx context.Context) error {
	addr := d.Addr
	if len(addr) == 0 {
		addr = DefaultAddr
	}
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Print("daemon", "info", "listen", ln.Addr())
	go NewServer().Accept(ln)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if d.Pub != nil {
			if _, err := d.Pub.Publish(i2c.Adapters()); err != nil {
				log.Print("daemon", "err", "publish", err)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
