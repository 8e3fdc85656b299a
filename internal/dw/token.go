// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dw

import "fmt"

// DataCmd bits
const (
	CmdRead    uint32 = 1 << 8
	CmdStop    uint32 = 1 << 9
	CmdRestart uint32 = 1 << 10
)

type Op uint8

const (
	OpWrite Op = iota
	OpRead
)

func (op Op) String() string {
	if op == OpRead {
		return "read"
	}
	return "write"
}

// Token is one DataCmd entry of the transmit FIFO: a data byte to write,
// or a request to read one byte.
type Token struct {
	Op      Op
	Data    byte
	Restart bool
	Stop    bool
}

// Word encodes the token as written to DataCmd.
func (tok Token) Word() uint32 {
	w := uint32(tok.Data)
	if tok.Op == OpRead {
		w = CmdRead
	}
	if tok.Restart {
		w |= CmdRestart
	}
	if tok.Stop {
		w |= CmdStop
	}
	return w
}

func DecodeToken(w uint32) Token {
	tok := Token{
		Restart: w&CmdRestart != 0,
		Stop:    w&CmdStop != 0,
	}
	if w&CmdRead != 0 {
		tok.Op = OpRead
	} else {
		tok.Data = byte(w)
	}
	return tok
}

func (tok Token) String() string {
	s := "read"
	if tok.Op == OpWrite {
		s = fmt.Sprintf("write %#02x", tok.Data)
	}
	if tok.Restart {
		s = "restart " + s
	}
	if tok.Stop {
		s += " stop"
	}
	return s
}
