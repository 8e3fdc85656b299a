// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dw

import (
	"fmt"
	"syscall"
)

// AbortSource is the TxAbrtSource register latched by a transmit abort.
type AbortSource uint32

const (
	Abrt7bAddrNoack AbortSource = 1 << iota
	Abrt10Addr1Noack
	Abrt10Addr2Noack
	AbrtTxdataNoack
	AbrtGcallNoack
	AbrtGcallRead
	AbrtHsAckdet
	AbrtSbyteAckdet
	AbrtHsNorstrt
	AbrtSbyteNorstrt
	Abrt10bRdNorstrt
	AbrtMasterDis
	AbrtArbLost
	AbrtSlvflushTxfifo
	AbrtSlvArblost
	AbrtSlvrdIntx
	nAbrt = iota
)

// AbrtNoack is the set of sources that mean the target didn't acknowledge.
const AbrtNoack = Abrt7bAddrNoack | Abrt10Addr1Noack | Abrt10Addr2Noack |
	AbrtTxdataNoack | AbrtGcallNoack

var abrtNames = [nAbrt]string{
	"7b_addr_noack",
	"10addr1_noack",
	"10addr2_noack",
	"txdata_noack",
	"gcall_noack",
	"gcall_read",
	"hs_ackdet",
	"sbyte_ackdet",
	"hs_norstrt",
	"sbyte_norstrt",
	"10b_rd_norstrt",
	"master_dis",
	"arb_lost",
	"slvflush_txfifo",
	"slv_arblost",
	"slvrd_intx",
}

func (src AbortSource) String() string {
	return bitNames(uint32(src), abrtNames[:])
}

// Errno maps the source to the transfer result in order of precedence:
// no acknowledge, lost arbitration, then general call read.
func (src AbortSource) Errno() syscall.Errno {
	switch {
	case src&AbrtNoack != 0:
		return syscall.EIO
	case src&AbrtArbLost != 0:
		return syscall.EAGAIN
	case src&AbrtGcallRead != 0:
		return syscall.EINVAL
	}
	return syscall.EIO
}

// AbortError is returned by Transfer after a transmit abort.
type AbortError struct {
	Source AbortSource
}

func (err *AbortError) Error() string {
	return fmt.Sprintf("abort %v: %v", err.Source, err.Source.Errno())
}

func (err *AbortError) Unwrap() error {
	return err.Source.Errno()
}
