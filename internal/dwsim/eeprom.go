// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dwsim

import "sync"

// EEPROM is a 24c02 style target: 256 bytes with a single byte word
// address that's set by the first byte written after START and
// incremented, with wrap, by each byte read or written.
type EEPROM struct {
	mu        sync.Mutex
	mem       [256]byte
	ptr       byte
	addressed bool
	writes    int
}

// NewEEPROM returns an EEPROM preloaded with the given contents.
func NewEEPROM(contents []byte) *EEPROM {
	e := new(EEPROM)
	copy(e.mem[:], contents)
	return e
}

func (e *EEPROM) Start(read bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addressed = false
	return true
}

func (e *EEPROM) Write(b byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.addressed {
		e.ptr = b
		e.addressed = true
		return true
	}
	e.mem[e.ptr] = b
	e.ptr++
	e.writes++
	return true
}

func (e *EEPROM) Read() byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.mem[e.ptr]
	e.ptr++
	return b
}

func (e *EEPROM) Stop() {}

// Bytes returns a copy of the contents.
func (e *EEPROM) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.mem[:]...)
}

// Writes returns the number of data bytes stored.
func (e *EEPROM) Writes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writes
}
