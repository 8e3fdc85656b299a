// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"strings"
	"testing"
)

func TestSelect(t *testing.T) {
	w := new(strings.Builder)
	var ran []string
	m := Selection{
		"xfer": func(ctx context.Context, args ...string) error {
			if Preemption(ctx) == "help" {
				Usage(ctx, "ADAPTER ADDR\n")
				return nil
			}
			ran = append(ran, strings.Join(PathOf(ctx), " "))
			return nil
		},
		"detect": func(ctx context.Context, args ...string) error {
			return ErrorfWith(ctx, "%s: no such adapter", args[0])
		},
	}
	try := func(t *testing.T, want string, args ...string) {
		t.Helper()
		w.Reset()
		ctx := WithPath(WithOutput(context.Background(), w), "dwi2c")
		ctx, args = Preempt(ctx, args)
		if err := m.Select(ctx, args...); err != nil {
			t.Fatal(err)
		}
		if got := w.String(); got != want {
			t.Errorf("%q != %q", got, want)
		}
	}
	t.Run("run", func(t *testing.T) {
		try(t, "", "xfer", "sim0")
		if len(ran) != 1 || ran[0] != "dwi2c xfer" {
			t.Errorf("%q", ran)
		}
	})
	t.Run("help", func(t *testing.T) {
		try(t, "usage: dwi2c xfer ADAPTER ADDR\n", "help", "xfer")
	})
	t.Run("help-selection", func(t *testing.T) {
		try(t, "usage: dwi2c COMMAND [ARG]...\n  detect\n  xfer\n", "help")
	})
	t.Run("complete", func(t *testing.T) {
		try(t, "detect\n", "complete", "d")
	})
	t.Run("complete-all", func(t *testing.T) {
		try(t, "detect\nxfer\n", "complete")
	})
	t.Run("error", func(t *testing.T) {
		ctx := WithPath(context.Background(), "dwi2c")
		err := m.Select(ctx, "detect", "i2c9")
		if err == nil {
			t.Fatal("no error")
		}
		if s, want := err.Error(), "dwi2c detect: i2c9: no such adapter"; s != want {
			t.Errorf("%q != %q", s, want)
		}
		err = m.Select(ctx, "probe")
		if err == nil || err.Error() != "dwi2c: probe: command not found" {
			t.Errorf("%v", err)
		}
	})
}

func TestRunSetup(t *testing.T) {
	defer func() { Setup = nil }()
	var setups, cleanups int
	Setup = func(context.Context) (func(), error) {
		setups++
		return func() { cleanups++ }, nil
	}
	m := Selection{
		"stats": func(ctx context.Context, args ...string) error {
			return nil
		},
	}
	ctx := WithPath(context.Background(), "dwi2c")
	if err := m.run(ctx, "stats"); err != nil {
		t.Fatal(err)
	}
	hctx, args := Preempt(ctx, []string{"help", "stats"})
	if err := m.run(hctx, args...); err != nil {
		t.Fatal(err)
	}
	if setups != 1 || cleanups != 1 {
		t.Errorf("%d setups, %d cleanups", setups, cleanups)
	}
}

func TestOutputDone(t *testing.T) {
	w := new(strings.Builder)
	ctx, cancel := context.WithCancel(context.Background())
	o := OutputOf(WithOutput(ctx, w))
	o.Print("before")
	cancel()
	o.Print("after")
	if _, err := o.Write([]byte("x")); err == nil {
		t.Error("wrote after cancel")
	}
	if s := w.String(); s != "before" {
		t.Errorf("%q != %q", s, "before")
	}
}
