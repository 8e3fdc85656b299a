// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import "syscall"

// BlockMax is the largest SMBus style block.
const BlockMax = 32

// WriteRead writes w then, after a RESTART, reads len(r) bytes from the
// same target. Either may be empty but not both.
func WriteRead(a Adapter, addr uint16, w, r []byte) error {
	var msgs [2]Msg
	n := 0
	if len(w) > 0 {
		msgs[n] = W(addr, w...)
		n++
	}
	if len(r) > 0 {
		msgs[n] = R(addr, r)
		n++
	}
	if n == 0 {
		return syscall.EINVAL
	}
	return a.Transfer(msgs[:n])
}

// ReadByteData reads one byte from the target's register.
func ReadByteData(a Adapter, addr uint16, reg uint8) (uint8, error) {
	var b [1]byte
	err := WriteRead(a, addr, []byte{reg}, b[:])
	return b[0], err
}

// WriteByteData writes one byte to the target's register.
func WriteByteData(a Adapter, addr uint16, reg, v uint8) error {
	return a.Transfer([]Msg{W(addr, reg, v)})
}

// ReadWordData reads a little endian word from the target's register.
func ReadWordData(a Adapter, addr uint16, reg uint8) (uint16, error) {
	var b [2]byte
	err := WriteRead(a, addr, []byte{reg}, b[:])
	return uint16(b[0]) | uint16(b[1])<<8, err
}

// WriteWordData writes a little endian word to the target's register.
func WriteWordData(a Adapter, addr uint16, reg uint8, v uint16) error {
	return a.Transfer([]Msg{W(addr, reg, byte(v), byte(v>>8))})
}

// ReadBlock fills buf from consecutive registers starting at reg.
func ReadBlock(a Adapter, addr uint16, reg uint8, buf []byte) error {
	if len(buf) == 0 || len(buf) > BlockMax {
		return syscall.EINVAL
	}
	return WriteRead(a, addr, []byte{reg}, buf)
}

// WriteBlock writes data to consecutive registers starting at reg.
func WriteBlock(a Adapter, addr uint16, reg uint8, data []byte) error {
	if len(data) == 0 || len(data) > BlockMax {
		return syscall.EINVAL
	}
	buf := make([]byte, 0, 1+len(data))
	buf = append(buf, reg)
	buf = append(buf, data...)
	return a.Transfer([]Msg{W(addr, buf...)})
}

// Probe reports whether a target acknowledges its address with a one
// byte read. Errors other than a NACK (EIO) are returned.
func Probe(a Adapter, addr uint16) (bool, error) {
	var b [1]byte
	err := a.Transfer([]Msg{R(addr, b[:])})
	switch Errno(err) {
	case 0:
		return true, nil
	case -int(syscall.EIO):
		return false, nil
	}
	return false, err
}
