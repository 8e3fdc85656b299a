// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package uio

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/platinasystems/dwi2c/internal/dw"
	"github.com/platinasystems/dwi2c/internal/mmio"
)

type file struct {
	events chan uint32
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFile() *file {
	return &file{
		events: make(chan uint32, 8),
		closed: make(chan struct{}),
	}
}

func (f *file) Read(b []byte) (int, error) {
	select {
	case n := <-f.events:
		binary.LittleEndian.PutUint32(b, n)
		return 4, nil
	case <-f.closed:
		return 0, os.ErrClosed
	}
}

func (f *file) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (f *file) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func TestServe(t *testing.T) {
	f := newFile()
	d := &Device{
		Block: mmio.New(make([]byte, dw.RegsSize)),
		name:  "uio9",
		f:     f,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handled := make(chan struct{}, 8)
	served := make(chan error, 1)
	go func() {
		served <- d.Serve(ctx, func() { handled <- struct{}{} })
	}()
	for i := uint32(1); i <= 3; i++ {
		f.events <- i
		select {
		case <-handled:
		case <-time.After(5 * time.Second):
			t.Fatal("event", i, "not handled")
		}
	}
	cancel()
	select {
	case err := <-served:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%v != %v", err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve didn't return")
	}
	if n := d.Events(); n != 3 {
		t.Errorf("%d events != 3", n)
	}
	if n := d.Count(); n != 3 {
		t.Errorf("%d count != 3", n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) < 3 {
		t.Fatalf("%d unmasks", len(f.writes))
	}
	for _, w := range f.writes {
		if binary.LittleEndian.Uint32(w) != 1 {
			t.Errorf("unmask %x", w)
		}
	}
	if err := d.Close(); err != nil {
		t.Error(err)
	}
}

func TestServeError(t *testing.T) {
	f := newFile()
	d := &Device{name: "uio9", f: f}
	f.Close()
	err := d.Serve(context.Background(), func() {})
	if !errors.Is(err, os.ErrClosed) {
		t.Errorf("%v isn't %v", err, os.ErrClosed)
	}
}

func TestMapSize(t *testing.T) {
	defer func(s string) { Sysfs = s }(Sysfs)
	Sysfs = t.TempDir()
	dir := filepath.Join(Sysfs, "uio3", "maps", "map0")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(filepath.Join(dir, "size"), []byte("0x1000\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	size, err := mapSize("uio3", 0)
	if err != nil {
		t.Fatal(err)
	}
	if size != 0x1000 {
		t.Errorf("%#x != 0x1000", size)
	}
	if _, err = mapSize("uio4", 0); err == nil {
		t.Error("missing map")
	}
	if _, err = Open(4); err == nil {
		t.Error("opened missing device")
	}
}
