// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dw

import (
	"fmt"
	"strings"
)

// Regs is the controller's register block. Some reads have side effects,
// e.g. the Clr* registers clear latched interrupt bits and DataCmd pops
// the receive FIFO.
type Regs interface {
	Read(r Reg) uint32
	Write(r Reg, v uint32)
}

// Reg is a register byte offset.
type Reg uint32

const (
	Con          Reg = 0x00
	Tar          Reg = 0x04
	DataCmd      Reg = 0x10
	SsSclHcnt    Reg = 0x14
	SsSclLcnt    Reg = 0x18
	FsSclHcnt    Reg = 0x1c
	FsSclLcnt    Reg = 0x20
	IntrStat     Reg = 0x2c
	IntrMask     Reg = 0x30
	RawIntrStat  Reg = 0x34
	RxTl         Reg = 0x38
	TxTl         Reg = 0x3c
	ClrIntr      Reg = 0x40
	ClrRxUnder   Reg = 0x44
	ClrRxOver    Reg = 0x48
	ClrTxOver    Reg = 0x4c
	ClrRdReq     Reg = 0x50
	ClrTxAbrt    Reg = 0x54
	ClrRxDone    Reg = 0x58
	ClrActivity  Reg = 0x5c
	ClrStopDet   Reg = 0x60
	ClrStartDet  Reg = 0x64
	ClrGenCall   Reg = 0x68
	Enable       Reg = 0x6c
	Status       Reg = 0x70
	Txflr        Reg = 0x74
	Rxflr        Reg = 0x78
	TxAbrtSource Reg = 0x80
	EnableStatus Reg = 0x9c

	// RegsSize is the span of the register block.
	RegsSize = 0x100
)

var regNames = map[Reg]string{
	Con:          "con",
	Tar:          "tar",
	DataCmd:      "data_cmd",
	SsSclHcnt:    "ss_scl_hcnt",
	SsSclLcnt:    "ss_scl_lcnt",
	FsSclHcnt:    "fs_scl_hcnt",
	FsSclLcnt:    "fs_scl_lcnt",
	IntrStat:     "intr_stat",
	IntrMask:     "intr_mask",
	RawIntrStat:  "raw_intr_stat",
	RxTl:         "rx_tl",
	TxTl:         "tx_tl",
	ClrIntr:      "clr_intr",
	ClrRxUnder:   "clr_rx_under",
	ClrRxOver:    "clr_rx_over",
	ClrTxOver:    "clr_tx_over",
	ClrRdReq:     "clr_rd_req",
	ClrTxAbrt:    "clr_tx_abrt",
	ClrRxDone:    "clr_rx_done",
	ClrActivity:  "clr_activity",
	ClrStopDet:   "clr_stop_det",
	ClrStartDet:  "clr_start_det",
	ClrGenCall:   "clr_gen_call",
	Enable:       "enable",
	Status:       "status",
	Txflr:        "txflr",
	Rxflr:        "rxflr",
	TxAbrtSource: "tx_abrt_source",
	EnableStatus: "enable_status",
}

func (r Reg) String() string {
	if s, found := regNames[r]; found {
		return s
	}
	return fmt.Sprintf("reg[%#x]", uint32(r))
}

// Con bits
const (
	ConMaster       uint32 = 1 << 0
	ConSpeedStd     uint32 = 1 << 1
	ConSpeedFast    uint32 = 2 << 1
	ConSpeedMask    uint32 = 3 << 1
	Con10BitMaster  uint32 = 1 << 4
	ConRestartEn    uint32 = 1 << 5
	ConSlaveDisable uint32 = 1 << 6
)

// Tar bits
const TarAddr10Bit uint32 = 1 << 12

// Status bits
const StatusActivity uint32 = 1 << 0

// Intr is an interrupt status or mask word.
type Intr uint32

const (
	IntrRxUnder Intr = 1 << iota
	IntrRxOver
	IntrRxFull
	IntrTxOver
	IntrTxEmpty
	IntrRdReq
	IntrTxAbrt
	IntrRxDone
	IntrActivity
	IntrStopDet
	IntrStartDet
	IntrGenCall
	nIntr = iota
)

// IntrDefault is the set serviced by the master transfer engine.
const IntrDefault = IntrRxFull | IntrTxEmpty | IntrTxAbrt | IntrStopDet

var intrNames = [nIntr]string{
	"rx_under",
	"rx_over",
	"rx_full",
	"tx_over",
	"tx_empty",
	"rd_req",
	"tx_abrt",
	"rx_done",
	"activity",
	"stop_det",
	"start_det",
	"gen_call",
}

func (x Intr) String() string {
	return bitNames(uint32(x), intrNames[:])
}

// Clr returns the clear-on-read register of a single interrupt bit.
func (x Intr) Clr() Reg {
	switch x {
	case IntrRxUnder:
		return ClrRxUnder
	case IntrRxOver:
		return ClrRxOver
	case IntrTxOver:
		return ClrTxOver
	case IntrRdReq:
		return ClrRdReq
	case IntrTxAbrt:
		return ClrTxAbrt
	case IntrRxDone:
		return ClrRxDone
	case IntrActivity:
		return ClrActivity
	case IntrStopDet:
		return ClrStopDet
	case IntrStartDet:
		return ClrStartDet
	case IntrGenCall:
		return ClrGenCall
	}
	return ClrIntr
}

func bitNames(x uint32, names []string) string {
	if x == 0 {
		return "0"
	}
	sb := new(strings.Builder)
	for i := 0; x != 0; i++ {
		bit := uint32(1) << i
		if x&bit == 0 {
			continue
		}
		x &^= bit
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		if i < len(names) && len(names[i]) > 0 {
			sb.WriteString(names[i])
		} else {
			fmt.Fprintf(sb, "bit%d", i)
		}
	}
	return sb.String()
}
