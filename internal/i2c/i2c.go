// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package i2c provides the bus independent message model, adapter
// registry, and helpers shared by I2C master drivers.
package i2c

import (
	"fmt"
	"strings"
)

// Flag qualifies a message.
type Flag uint16

const (
	// Read data from the target; otherwise, write to it.
	Read Flag = 1 << 1
)

func (f Flag) String() string {
	if f&Read != 0 {
		return "read"
	}
	return "write"
}

// Msg is one segment of a combined transfer. The buffer is borrowed by
// the adapter for the duration of Transfer; its length is the number of
// bytes to write or read.
type Msg struct {
	Addr  uint16
	Flags Flag
	Buf   []byte
}

func (m *Msg) IsRead() bool { return m.Flags&Read != 0 }

func (m Msg) String() string {
	return fmt.Sprintf("%#02x %s %d", m.Addr, m.Flags, len(m.Buf))
}

// Msgs formats a message list for traces.
type Msgs []Msg

func (msgs Msgs) String() string {
	sb := new(strings.Builder)
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprint(sb, ", ")
		}
		fmt.Fprint(sb, "[", m, "]")
	}
	return sb.String()
}

// W returns a write message.
func W(addr uint16, data ...byte) Msg {
	return Msg{Addr: addr, Buf: data}
}

// R returns a read message into buf.
func R(addr uint16, buf []byte) Msg {
	return Msg{Addr: addr, Flags: Read, Buf: buf}
}

// Adapter executes a sequence of messages as one bus transaction with a
// RESTART between messages and a single STOP at the end.
type Adapter interface {
	Transfer(msgs []Msg) error
}
