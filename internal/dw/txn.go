// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dw

import (
	"errors"

	"github.com/platinasystems/dwi2c/internal/i2c"
)

type status uint8

const (
	statusIdle            status = 0
	statusWriteInProgress status = 1 << 0
	statusReadInProgress  status = 1 << 1
)

var errAbort = errors.New("transmit abort")

type cursor struct {
	index int
	// buf is the unserviced tail of msgs[index]
	buf []byte
}

// transaction is reset by every Transfer. Between the phase store of
// phaseActive and the handoff it's only touched by Interrupt.
type transaction struct {
	msgs        []i2c.Msg
	addr        uint16
	tx, rx      cursor
	outstanding int
	status      status
	msgErr      error
	cmdErr      error
	abortSource AbortSource
}

func (t *transaction) reset(msgs []i2c.Msg) {
	*t = transaction{msgs: msgs}
	if len(msgs) > 0 {
		t.addr = msgs[0].Addr
	}
}

// The handoff phase is packed with the transfer generation so that a
// watchdog or interrupt left over from a previous transfer can't claim the
// current one.
type phase uint64

const (
	phaseIdle phase = iota
	phaseActive
	phaseComplete
	phaseTimedOut

	phaseBits = 2
	phaseMask = 1<<phaseBits - 1
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseActive:
		return "active"
	case phaseComplete:
		return "complete"
	case phaseTimedOut:
		return "timed-out"
	}
	return "invalid"
}

func packPhase(gen uint64, p phase) uint64 {
	return gen<<phaseBits | uint64(p)
}

func unpackPhase(v uint64) (gen uint64, p phase) {
	return v >> phaseBits, phase(v & phaseMask)
}
