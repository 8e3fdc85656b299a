// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dwsim simulates a DesignWare I2C controller in master mode with
// targets attached to its bus.
//
// Tokens written to DATA_CMD execute immediately unless the controller is
// stalled. The interrupt line is a goroutine that calls the attached handler
// after each register access that changed state while an unmasked
// interrupt is pending.
package dwsim

import (
	"sync"

	"github.com/platinasystems/dwi2c/internal/dw"
)

// Device is a bus target.
type Device interface {
	// Start is the address phase; false is a NACK.
	Start(read bool) bool
	// Write is a data byte from the master; false is a NACK.
	Write(b byte) bool
	Read() byte
	Stop()
}

type Controller struct {
	mu sync.Mutex

	txDepth, rxDepth int

	con, tar          uint32
	ssHcnt, ssLcnt    uint32
	fsHcnt, fsLcnt    uint32
	txTl, rxTl        uint32
	mask, latched     dw.Intr
	enabled           bool
	aborted           bool
	abortSource       dw.AbortSource
	tx                []uint32
	rx                []byte
	devices           map[uint16]Device
	open              *session
	busy, stalled     bool
	inject            dw.AbortSource
	tokens            []dw.Token
	inits, violations int
	overflows         int

	handler func()
	kick    chan struct{}
	quit    chan struct{}
	once    sync.Once
}

type session struct {
	addr uint16
	dev  Device
	read bool
}

// New returns a disabled controller with FIFOs of the given depth.
func New(depth int) *Controller {
	if depth <= 0 {
		depth = dw.DefaultConfig.TxFifoDepth
	}
	return &Controller{
		txDepth: depth,
		rxDepth: depth,
		devices: make(map[uint16]Device),
		kick:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

// Attach connects the interrupt line to the handler.
func (c *Controller) Attach(handler func()) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
	go c.line()
	c.signal()
}

// Close disconnects the interrupt line.
func (c *Controller) Close() error {
	c.once.Do(func() { close(c.quit) })
	return nil
}

// Add attaches a target at the given address.
func (c *Controller) Add(addr uint16, dev Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices[addr] = dev
}

// SetBusy holds IC_STATUS.ACTIVITY as if another master owned the bus.
func (c *Controller) SetBusy(busy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = busy
}

// Stall holds tokens in the transmit FIFO, as if SCL were stretched
// indefinitely. Releasing the stall executes them.
func (c *Controller) Stall(stall bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stalled = stall
	if !stall {
		c.drainTx()
		c.signal()
	}
}

// InjectAbort aborts the next token with the given source.
func (c *Controller) InjectAbort(src dw.AbortSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inject = src
}

// Tokens returns the tokens executed since the last ResetTokens.
func (c *Controller) Tokens() []dw.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dw.Token(nil), c.tokens...)
}

func (c *Controller) ResetTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = c.tokens[:0]
}

// Inits returns the number of times the SCL timing was programmed.
func (c *Controller) Inits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inits
}

// Violations returns the number of target address changes while the
// controller was enabled or a bus transaction was open.
func (c *Controller) Violations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violations
}

// Overflows returns the number of tokens or bytes dropped for want of FIFO
// space.
func (c *Controller) Overflows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overflows
}

// Enabled reports IC_ENABLE_STATUS.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Speed returns the IC_CON speed field.
func (c *Controller) Speed() dw.Speed {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.con&dw.ConSpeedMask == dw.ConSpeedFast {
		return dw.Fast
	}
	return dw.Standard
}

func (c *Controller) Read(r dw.Reg) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch r {
	case dw.Con:
		return c.con
	case dw.Tar:
		return c.tar
	case dw.DataCmd:
		if len(c.rx) == 0 {
			c.latch(dw.IntrRxUnder)
			return 0
		}
		b := c.rx[0]
		c.rx = c.rx[1:]
		c.signal()
		return uint32(b)
	case dw.SsSclHcnt:
		return c.ssHcnt
	case dw.SsSclLcnt:
		return c.ssLcnt
	case dw.FsSclHcnt:
		return c.fsHcnt
	case dw.FsSclLcnt:
		return c.fsLcnt
	case dw.IntrStat:
		return uint32(c.raw() & c.mask)
	case dw.IntrMask:
		return uint32(c.mask)
	case dw.RawIntrStat:
		return uint32(c.raw())
	case dw.RxTl:
		return c.rxTl
	case dw.TxTl:
		return c.txTl
	case dw.ClrIntr:
		c.clear(^dw.Intr(0))
	case dw.ClrRxUnder:
		c.clear(dw.IntrRxUnder)
	case dw.ClrRxOver:
		c.clear(dw.IntrRxOver)
	case dw.ClrTxOver:
		c.clear(dw.IntrTxOver)
	case dw.ClrRdReq:
		c.clear(dw.IntrRdReq)
	case dw.ClrTxAbrt:
		c.clear(dw.IntrTxAbrt)
	case dw.ClrRxDone:
		c.clear(dw.IntrRxDone)
	case dw.ClrActivity:
		c.clear(dw.IntrActivity)
	case dw.ClrStopDet:
		c.clear(dw.IntrStopDet)
	case dw.ClrStartDet:
		c.clear(dw.IntrStartDet)
	case dw.ClrGenCall:
		c.clear(dw.IntrGenCall)
	case dw.Enable, dw.EnableStatus:
		if c.enabled {
			return 1
		}
	case dw.Status:
		if c.busy || c.open != nil {
			return dw.StatusActivity
		}
	case dw.Txflr:
		return uint32(len(c.tx))
	case dw.Rxflr:
		return uint32(len(c.rx))
	case dw.TxAbrtSource:
		return uint32(c.abortSource)
	}
	return 0
}

func (c *Controller) Write(r dw.Reg, v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch r {
	case dw.Con:
		c.con = v
	case dw.Tar:
		if c.enabled || c.open != nil {
			c.violations++
		}
		c.tar = v
	case dw.DataCmd:
		c.push(v)
	case dw.SsSclHcnt:
		c.ssHcnt = v
		c.inits++
	case dw.SsSclLcnt:
		c.ssLcnt = v
	case dw.FsSclHcnt:
		c.fsHcnt = v
	case dw.FsSclLcnt:
		c.fsLcnt = v
	case dw.IntrMask:
		if mask := dw.Intr(v); mask != c.mask {
			c.mask = mask
			c.signal()
		}
	case dw.RxTl:
		c.rxTl = v
	case dw.TxTl:
		c.txTl = v
	case dw.Enable:
		enable := v&1 != 0
		if enable == c.enabled {
			return
		}
		c.enabled = enable
		if !enable {
			c.tx = c.tx[:0]
			c.rx = c.rx[:0]
			c.aborted = false
			c.close()
		}
		c.signal()
	}
}

// raw is IC_RAW_INTR_STAT; TX_EMPTY and RX_FULL follow the FIFO levels, the
// rest are latched until cleared.
func (c *Controller) raw() dw.Intr {
	x := c.latched
	if c.enabled && uint32(len(c.tx)) <= c.txTl {
		x |= dw.IntrTxEmpty
	}
	if uint32(len(c.rx)) > c.rxTl {
		x |= dw.IntrRxFull
	}
	if c.open != nil {
		x |= dw.IntrActivity
	}
	return x
}

func (c *Controller) latch(x dw.Intr) {
	c.latched |= x
	c.signal()
}

func (c *Controller) clear(x dw.Intr) {
	if c.latched&x == 0 {
		return
	}
	if x&dw.IntrTxAbrt != 0 && c.latched&dw.IntrTxAbrt != 0 {
		c.abortSource = 0
		c.aborted = false
	}
	c.latched &^= x
	c.signal()
}

func (c *Controller) push(w uint32) {
	if !c.enabled || c.aborted {
		return
	}
	if len(c.tx) >= c.txDepth {
		c.overflows++
		c.latch(dw.IntrTxOver)
		return
	}
	c.tx = append(c.tx, w)
	c.drainTx()
	c.signal()
}

func (c *Controller) drainTx() {
	for !c.stalled && c.enabled && len(c.tx) > 0 {
		w := c.tx[0]
		c.tx = c.tx[1:]
		c.exec(dw.DecodeToken(w))
	}
}

func (c *Controller) exec(tok dw.Token) {
	c.tokens = append(c.tokens, tok)
	if c.inject != 0 {
		src := c.inject
		c.inject = 0
		c.abort(src)
		return
	}
	read := tok.Op == dw.OpRead
	if c.open != nil && (tok.Restart || c.open.read != read) {
		c.open = nil
	}
	if c.open == nil {
		addr := c.address()
		dev := c.devices[addr]
		c.open = &session{addr: addr, dev: dev, read: read}
		if dev == nil || !dev.Start(read) {
			src := dw.Abrt7bAddrNoack
			if c.tar&dw.TarAddr10Bit != 0 {
				src = dw.Abrt10Addr1Noack
			}
			c.abort(src)
			return
		}
	}
	if read {
		b := c.open.dev.Read()
		if len(c.rx) >= c.rxDepth {
			c.overflows++
			c.latched |= dw.IntrRxOver
		} else {
			c.rx = append(c.rx, b)
		}
	} else if !c.open.dev.Write(tok.Data) {
		c.abort(dw.AbrtTxdataNoack)
		return
	}
	if tok.Stop {
		c.close()
		c.latched |= dw.IntrStopDet
	}
}

func (c *Controller) address() uint16 {
	if c.tar&dw.TarAddr10Bit != 0 {
		return uint16(c.tar & 0x3ff)
	}
	return uint16(c.tar & 0x7f)
}

// abort flushes the transmit FIFO and issues STOP.
func (c *Controller) abort(src dw.AbortSource) {
	c.abortSource |= src
	c.aborted = true
	c.tx = c.tx[:0]
	c.close()
	c.latched |= dw.IntrTxAbrt | dw.IntrStopDet
}

func (c *Controller) close() {
	if c.open != nil && c.open.dev != nil {
		c.open.dev.Stop()
	}
	c.open = nil
}

// signal kicks the interrupt line.
func (c *Controller) signal() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Controller) pending() (func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler, c.handler != nil && c.enabled && c.raw()&c.mask != 0
}

func (c *Controller) line() {
	for {
		select {
		case <-c.quit:
			return
		case <-c.kick:
		}
		if handler, pending := c.pending(); pending {
			handler()
		}
	}
}
