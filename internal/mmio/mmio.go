// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package mmio provides 32-bit register access to a memory mapped
// controller.
package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/platinasystems/dwi2c/internal/dw"
	"golang.org/x/sys/unix"
)

// Block is a register window. Each access is a single aligned 32-bit load
// or store.
type Block struct {
	mem    []byte
	mapped bool
}

// New returns a block of the given memory, e.g. a test buffer.
func New(mem []byte) *Block {
	return &Block{mem: mem}
}

// Map the size bytes at offset of the given file, e.g. /dev/mem or
// /dev/uioN.
func Map(fn string, offset int64, size int) (*Block, error) {
	f, err := os.OpenFile(fn, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mem, err := unix.Mmap(int(f.Fd()), offset, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", fn, err)
	}
	return &Block{mem: mem, mapped: true}, nil
}

func (b *Block) Len() int { return len(b.mem) }

func (b *Block) Close() error {
	if !b.mapped || b.mem == nil {
		return nil
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	return err
}

func (b *Block) p(r dw.Reg) *uint32 {
	if int(r)+4 > len(b.mem) || r&3 != 0 {
		panic(fmt.Errorf("%v: out of range or misaligned", r))
	}
	return (*uint32)(unsafe.Pointer(&b.mem[r]))
}

func (b *Block) Read(r dw.Reg) uint32 {
	return atomic.LoadUint32(b.p(r))
}

func (b *Block) Write(r dw.Reg, v uint32) {
	atomic.StoreUint32(b.p(r), v)
}
