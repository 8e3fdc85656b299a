// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package xfer

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/platinasystems/dwi2c/internal/board"
	"github.com/platinasystems/dwi2c/internal/goes"
	"github.com/platinasystems/dwi2c/internal/i2c"
	"github.com/platinasystems/dwi2c/internal/i2cd"
)

const simBoard = `
adapters:
- name: xfer-sim0
  driver: sim
  devices:
  - addr: 0x50
    model: eeprom
    contents: [1, 2, 3, 4]
`

func open(t *testing.T) {
	t.Helper()
	cfg, err := board.Parse([]byte(simBoard))
	if err != nil {
		t.Fatal(err)
	}
	b, err := cfg.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
}

func run(args ...string) (string, error) {
	w := new(strings.Builder)
	ctx := goes.WithOutput(context.Background(), w)
	ctx = goes.WithPath(goes.WithPath(ctx, "dwi2c"), Name)
	err := Main(ctx, args...)
	return w.String(), err
}

func TestParse(t *testing.T) {
	for _, x := range []struct {
		args string
		want string
	}{
		{"0x50 1 2", "[0x50 write 2]"},
		{"0x50 w 0 r 2", "[0x50 write 1], [0x50 read 2]"},
		{"80 r 1 r 2", "[0x50 read 1], [0x50 read 2]"},
		{"0x50 1 r 2 3", "[0x50 write 1], [0x50 read 2], [0x50 write 1]"},
		{"0x3ff w 0xff", "[0x3ff write 1]"},
	} {
		msgs, err := Parse(strings.Fields(x.args))
		if err != nil {
			t.Errorf("%s: %v", x.args, err)
			continue
		}
		if got := i2c.Msgs(msgs).String(); got != x.want {
			t.Errorf("%s: %q != %q", x.args, got, x.want)
		}
	}
	for _, args := range []string{
		"",
		"zz",
		"0x400 1",
		"0x50",
		"0x50 w",
		"0x50 w 1 w",
		"0x50 r",
		"0x50 r 0",
		"0x50 r x",
		"0x50 256",
	} {
		if _, err := Parse(strings.Fields(args)); err == nil {
			t.Errorf("%q: no error", args)
		}
	}
}

func TestRun(t *testing.T) {
	open(t)
	out, err := run("-a", "xfer-sim0", "0x50", "w", "1", "r", "3")
	if err != nil {
		t.Fatal(err)
	}
	if want := "02 03 04\n"; out != want {
		t.Errorf("%q != %q", out, want)
	}
	if out, err = run("0x50", "2", "0xaa", "0xbb"); err != nil || out != "" {
		t.Fatal(out, err)
	}
	if out, _ = run("0x50", "1", "r", "1", "r", "2"); out != "02\naa bb\n" {
		t.Errorf("%q", out)
	}
	_, err = run("0x51", "r", "1")
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("%v != %v", err, syscall.EIO)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "dwi2c xfer: xfer-sim0: ") {
		t.Errorf("%q", err)
	}
	if _, err = run("-a", "xfer-sim9", "0x50", "r", "1"); !errors.Is(err, syscall.ENODEV) {
		t.Errorf("%v != %v", err, syscall.ENODEV)
	}
}

func TestRemote(t *testing.T) {
	open(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skip(err)
	}
	defer ln.Close()
	go i2cd.NewServer().Accept(ln)
	out, err := run("-remote", ln.Addr().String(), "-a", "xfer-sim0",
		"0x50", "0", "r", "2")
	if err != nil {
		t.Fatal(err)
	}
	if want := "01 02\n"; out != want {
		t.Errorf("%q != %q", out, want)
	}
	_, err = run("-remote", ln.Addr().String(), "0x51", "r", "1")
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("%v != %v", err, syscall.EIO)
	}
}

func TestHelp(t *testing.T) {
	w := new(strings.Builder)
	ctx := goes.WithOutput(context.Background(), w)
	ctx = goes.WithPath(goes.WithPath(goes.WithPath(ctx, "dwi2c"), "help"),
		Name)
	if err := Main(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(w.String(), "usage: dwi2c xfer [-a ADAPTER]") {
		t.Errorf("%q", w)
	}
}
