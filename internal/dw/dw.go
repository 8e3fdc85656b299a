// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dw is an interrupt driven master transfer engine for DesignWare
// I2C controllers.
//
// A Transfer runs with the caller blocked on a single permit handoff while
// the controller's interrupt, delivered through Interrupt, services the
// FIFOs. Either the interrupt handler, at STOP or abort, or the watchdog, at
// timeout, claims the transfer and hands it back; the first claim wins.
package dw

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/platinasystems/dwi2c/internal/dbg"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/dwi2c/internal/watchdog"
)

var Trace = dbg.NoOp

type Adapter struct {
	regs Regs
	cfg  Config
	wd   *watchdog.Watchdog

	// mu serializes Transfer, SetSpeed, Init and Close.
	mu  sync.Mutex
	gen uint64
	txn transaction

	state atomic.Uint64
	done  chan phase
	inIRQ atomic.Int32

	counters
}

// New returns an adapter of the given register block. A nil cfg is
// DefaultConfig, zero fields of others are set to their default.
// The controller isn't programmed until Init.
func New(regs Regs, cfg *Config) *Adapter {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c := cfg.fill()
	return &Adapter{
		regs: regs,
		cfg:  c,
		wd:   watchdog.New(c.Clock),
		done: make(chan phase, 1),
	}
}

// Config returns the adapter's effective configuration.
func (a *Adapter) Config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Init disables the controller, masks and clears its interrupts then
// programs SCL timing, FIFO thresholds and master mode at the configured
// speed.
func (a *Adapter) Init() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
}

// Close disarms the watchdog and disables the controller.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wd.Cancel()
	a.disable()
	return nil
}

// SetSpeed selects standard or fast mode from the given bus rate.
func (a *Adapter) SetSpeed(hz uint32) error {
	speed, err := SpeedOf(hz)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Speed = speed
	a.setEnable(false)
	a.regs.Write(Con, a.con())
	return nil
}

// Transfer executes the messages as a single bus transaction, with RESTART
// between messages and STOP after the last. All messages must address the
// same target and have at least one byte.
//
// The result is nil, syscall.EINVAL, syscall.ETIMEDOUT, or an *AbortError
// that unwraps to syscall.EIO, syscall.EAGAIN or syscall.EINVAL.
func (a *Adapter) Transfer(msgs []i2c.Msg) (err error) {
	if len(msgs) == 0 {
		a.transfers.Add(1)
		a.invalid.Add(1)
		return syscall.EINVAL
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transfers.Add(1)
	defer func() {
		a.count(err)
	}()

	a.gen++
	gen := a.gen
	a.txn.reset(msgs)
	a.state.Store(packPhase(gen, phaseIdle))

	if err = validate(msgs); err != nil {
		return Trace.Log(err, "msgs", i2c.Msgs(msgs))
	}
	if err = a.waitBusIdle(); err != nil {
		return Trace.Log(err, "bus busy")
	}

	a.wd.Start(a.cfg.Timeout, func() {
		a.timeout(gen)
	})
	a.start(gen)

	p := <-a.done
	a.wd.Cancel()

	if p == phaseTimedOut {
		a.syncInterrupt()
		a.init()
		a.reinits.Add(1)
		return Trace.Log(syscall.ETIMEDOUT, "reinit")
	}

	a.disable()

	t := &a.txn
	switch {
	case t.msgErr != nil:
		return t.msgErr
	case t.cmdErr == nil:
		return nil
	case t.cmdErr == errAbort:
		return Trace.Log(&AbortError{Source: t.abortSource})
	}
	return syscall.EIO
}

func validate(msgs []i2c.Msg) error {
	for i := range msgs {
		if len(msgs[i].Buf) == 0 || msgs[i].Addr != msgs[0].Addr ||
			msgs[i].Addr > 0x3ff {
			return syscall.EINVAL
		}
	}
	return nil
}

func (a *Adapter) con() uint32 {
	return ConRestartEn | ConMaster | ConSlaveDisable | a.cfg.Speed.con()
}

func (a *Adapter) init() {
	a.disable()
	a.regs.Write(SsSclHcnt, a.cfg.SS.Hcnt)
	a.regs.Write(SsSclLcnt, a.cfg.SS.Lcnt)
	a.regs.Write(FsSclHcnt, a.cfg.FS.Hcnt)
	a.regs.Write(FsSclLcnt, a.cfg.FS.Lcnt)
	a.regs.Write(TxTl, uint32(a.cfg.TxFifoDepth-1))
	a.regs.Write(RxTl, 0)
	a.regs.Write(Con, a.con())
}

func (a *Adapter) disable() {
	a.setEnable(false)
	a.regs.Write(IntrMask, 0)
	a.regs.Read(ClrIntr)
}

func (a *Adapter) setEnable(enable bool) {
	var v uint32
	if enable {
		v = 1
	}
	for i := 0; i < a.cfg.EnableRetries; i++ {
		a.regs.Write(Enable, v)
		if a.regs.Read(EnableStatus)&1 == v {
			return
		}
		a.cfg.Clock.Sleep(a.cfg.EnableInterval)
	}
	Trace.Log("enable", enable, "timeout")
}

func (a *Adapter) waitBusIdle() error {
	for i := 0; a.regs.Read(Status)&StatusActivity != 0; i++ {
		if i == a.cfg.BusIdlePolls {
			return syscall.ETIMEDOUT
		}
		a.cfg.Clock.Sleep(a.cfg.BusIdleInterval)
	}
	return nil
}

func (a *Adapter) start(gen uint64) {
	a.setEnable(false)
	tar := uint32(a.txn.addr)
	con := a.con()
	if a.txn.addr > 0x7f {
		tar |= TarAddr10Bit
		con |= Con10BitMaster
	}
	a.regs.Write(Con, con)
	a.regs.Write(Tar, tar)
	a.regs.Write(IntrMask, 0)
	a.setEnable(true)
	a.regs.Read(ClrIntr)
	// interrupts stay masked if the watchdog claimed the transfer while
	// the controller was being started
	if !a.state.CompareAndSwap(packPhase(gen, phaseIdle),
		packPhase(gen, phaseActive)) {
		return
	}
	a.regs.Write(IntrMask, uint32(IntrDefault))
}

// timeout is the watchdog callback of the given transfer generation. It may
// fire before start has activated the transfer.
func (a *Adapter) timeout(gen uint64) {
	if a.claim(gen, phaseActive, phaseTimedOut) ||
		a.claim(gen, phaseIdle, phaseTimedOut) {
		Trace.Log("generation", gen, "timed out")
	}
}

// claim moves the given generation from one phase to the terminal phase
// and, if it won, hands the transfer back to the waiting caller.
func (a *Adapter) claim(gen uint64, from, to phase) bool {
	if !a.state.CompareAndSwap(packPhase(gen, from), packPhase(gen, to)) {
		return false
	}
	a.done <- to
	return true
}

// syncInterrupt waits for any Interrupt that entered before the claim.
func (a *Adapter) syncInterrupt() {
	for a.inIRQ.Load() != 0 {
		runtime.Gosched()
	}
}

type counters struct {
	transfers, ok, invalid, timeouts atomic.Uint64
	aborts, noack, arbLost, ioErrors atomic.Uint64
	reinits, interrupts, spurious    atomic.Uint64
	txBytes, rxBytes                 atomic.Uint64
}

func (a *Adapter) count(err error) {
	var abort *AbortError
	switch {
	case err == nil:
		a.ok.Add(1)
	case errors.As(err, &abort):
		a.aborts.Add(1)
		switch {
		case abort.Source&AbrtNoack != 0:
			a.noack.Add(1)
		case abort.Source&AbrtArbLost != 0:
			a.arbLost.Add(1)
		}
	case errors.Is(err, syscall.EINVAL):
		a.invalid.Add(1)
	case errors.Is(err, syscall.ETIMEDOUT):
		a.timeouts.Add(1)
	default:
		a.ioErrors.Add(1)
	}
}

// Stats is a snapshot of an adapter's counters.
type Stats struct {
	Transfers  uint64 `yaml:"transfers"`
	Ok         uint64 `yaml:"ok"`
	Invalid    uint64 `yaml:"invalid"`
	Timeouts   uint64 `yaml:"timeouts"`
	Aborts     uint64 `yaml:"aborts"`
	NoAck      uint64 `yaml:"noack"`
	ArbLost    uint64 `yaml:"arb_lost"`
	IOErrors   uint64 `yaml:"io_errors"`
	Reinits    uint64 `yaml:"reinits"`
	Watchdogs  uint64 `yaml:"watchdogs"`
	Interrupts uint64 `yaml:"interrupts"`
	Spurious   uint64 `yaml:"spurious"`
	TxBytes    uint64 `yaml:"tx_bytes"`
	RxBytes    uint64 `yaml:"rx_bytes"`
}

func (a *Adapter) Stats() Stats {
	return Stats{
		Transfers:  a.transfers.Load(),
		Ok:         a.ok.Load(),
		Invalid:    a.invalid.Load(),
		Timeouts:   a.timeouts.Load(),
		Aborts:     a.aborts.Load(),
		NoAck:      a.noack.Load(),
		ArbLost:    a.arbLost.Load(),
		IOErrors:   a.ioErrors.Load(),
		Reinits:    a.reinits.Load(),
		Watchdogs:  a.wd.Arms(),
		Interrupts: a.interrupts.Load(),
		Spurious:   a.spurious.Load(),
		TxBytes:    a.txBytes.Load(),
		RxBytes:    a.rxBytes.Load(),
	}
}

// Each calls f with the name and value of every counter.
func (s *Stats) Each(f func(name string, v uint64)) {
	f("transfers", s.Transfers)
	f("ok", s.Ok)
	f("invalid", s.Invalid)
	f("timeouts", s.Timeouts)
	f("aborts", s.Aborts)
	f("noack", s.NoAck)
	f("arb_lost", s.ArbLost)
	f("io_errors", s.IOErrors)
	f("reinits", s.Reinits)
	f("watchdogs", s.Watchdogs)
	f("interrupts", s.Interrupts)
	f("spurious", s.Spurious)
	f("tx_bytes", s.TxBytes)
	f("rx_bytes", s.RxBytes)
}
