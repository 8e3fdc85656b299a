// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dw

import "syscall"

// Interrupt services the controller's interrupt. It never blocks and may be
// called from any goroutine, e.g. a UIO event loop, while a Transfer waits.
func (a *Adapter) Interrupt() {
	a.inIRQ.Add(1)
	defer a.inIRQ.Add(-1)

	s := a.state.Load()
	gen, p := unpackPhase(s)
	if p != phaseActive {
		a.spurious.Add(1)
		return
	}
	if a.regs.Read(Enable)&1 == 0 ||
		Intr(a.regs.Read(RawIntrStat))&^IntrActivity == 0 {
		a.spurious.Add(1)
		return
	}
	a.interrupts.Add(1)

	t := &a.txn
	stat := a.readClearIntr()
	Trace.Log("gen", gen, "stat", stat)

	if stat&IntrTxAbrt != 0 {
		t.cmdErr = errAbort
		t.status = statusIdle
		a.regs.Write(IntrMask, 0)
	} else {
		if stat&IntrRxFull != 0 {
			a.readMsgs()
		}
		if stat&IntrTxEmpty != 0 {
			a.writeMsgs()
		}
	}

	if stat&(IntrTxAbrt|IntrStopDet) != 0 || t.msgErr != nil {
		a.claim(gen, phaseActive, phaseComplete)
	}
}

// readClearIntr returns the masked interrupt status after clearing its
// latched bits. The abort source is captured before it's cleared with
// TX_ABRT.
func (a *Adapter) readClearIntr() Intr {
	stat := Intr(a.regs.Read(IntrStat))
	for _, bit := range []Intr{
		IntrRxUnder,
		IntrRxOver,
		IntrTxOver,
		IntrRdReq,
		IntrTxAbrt,
		IntrRxDone,
		IntrActivity,
		IntrStopDet,
		IntrStartDet,
		IntrGenCall,
	} {
		if stat&bit == 0 {
			continue
		}
		if bit == IntrTxAbrt {
			a.txn.abortSource = AbortSource(a.regs.Read(TxAbrtSource))
		}
		a.regs.Read(bit.Clr())
	}
	return stat
}

// readMsgs drains the receive FIFO into the read messages from the rx
// cursor.
func (a *Adapter) readMsgs() {
	t := &a.txn
	for ; t.rx.index < len(t.msgs); t.rx.index++ {
		m := &t.msgs[t.rx.index]
		if !m.IsRead() {
			continue
		}
		if t.status&statusReadInProgress == 0 {
			t.rx.buf = m.Buf
		}
		for n := a.regs.Read(Rxflr); n > 0 && len(t.rx.buf) > 0; n-- {
			t.rx.buf[0] = byte(a.regs.Read(DataCmd))
			t.rx.buf = t.rx.buf[1:]
			t.outstanding--
			a.rxBytes.Add(1)
		}
		if len(t.rx.buf) > 0 {
			t.status |= statusReadInProgress
			return
		}
		t.status &^= statusReadInProgress
	}
}

// writeMsgs fills the transmit FIFO from the tx cursor with data tokens of
// write messages and read tokens of read messages. Outstanding read tokens
// are limited to the receive FIFO depth.
func (a *Adapter) writeMsgs() {
	t := &a.txn
	mask := IntrDefault
	last := len(t.msgs) - 1
	for ; t.tx.index <= last; t.tx.index++ {
		m := &t.msgs[t.tx.index]
		if m.Addr != t.addr || len(m.Buf) == 0 {
			t.msgErr = syscall.EINVAL
			break
		}
		if t.status&statusWriteInProgress == 0 {
			t.tx.buf = m.Buf
		}
		txAvail := a.cfg.TxFifoDepth - int(a.regs.Read(Txflr))
		rxAvail := a.cfg.RxFifoDepth - int(a.regs.Read(Rxflr))
		for len(t.tx.buf) > 0 && txAvail > 0 && rxAvail > 0 {
			tok := Token{
				Restart: t.tx.index > 0 && len(t.tx.buf) == len(m.Buf),
				Stop:    t.tx.index == last && len(t.tx.buf) == 1,
			}
			if m.IsRead() {
				if t.outstanding >= a.cfg.RxFifoDepth {
					break
				}
				tok.Op = OpRead
				t.outstanding++
			} else {
				tok.Data = t.tx.buf[0]
				a.txBytes.Add(1)
			}
			a.regs.Write(DataCmd, tok.Word())
			t.tx.buf = t.tx.buf[1:]
			txAvail--
		}
		if len(t.tx.buf) > 0 {
			t.status |= statusWriteInProgress
			break
		}
		t.status &^= statusWriteInProgress
	}
	if t.tx.index > last {
		mask &^= IntrTxEmpty
	}
	if t.msgErr != nil {
		mask = 0
	}
	a.regs.Write(IntrMask, uint32(mask))
}
