// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes is a context based command selector.
//
//	var Commands = goes.Selection{
//		"xfer":  xfer.Main,
//		"stats": stats.Main,
//	}
//
//	func main() { Commands.Main() }
//
// The "help" and "complete" leading arguments preempt the selected command
// which then prints its usage or completions rather than running.
package goes

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
)

var Prog = filepath.Base(os.Args[0])

type Func = func(context.Context, ...string) error

type Selection map[string]Func

// Setup, if set, runs after option parsing and before any non-preempted
// command; the returned cleanup runs after the command.
var Setup func(ctx context.Context) (cleanup func(), err error)

var TerminationSignals = []os.Signal{
	os.Interrupt,
	os.Signal(syscall.SIGTERM),
}

var Fatal = log.Fatal

func (m Selection) Keys() []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Main parses the global options of flag.CommandLine then runs the command
// selected by the remaining arguments.
func (m Selection) Main() {
	log.SetFlags(0)
	log.SetPrefix(Prog + ": ")
	ctx, stop := signal.NotifyContext(context.Background(),
		TerminationSignals...)
	defer stop()
	ctx = WithOutput(ctx, os.Stdout)
	ctx = WithPath(ctx, Prog)
	timeout := flag.Duration("timeout", 0,
		"Terminate command if incomplete by non-zero limit.")
	flag.CommandLine.Init(Prog, flag.ContinueOnError)
	flag.Usage = func() {
		Usage(ctx, "[OPTION]... COMMAND [ARG]...\n",
			"\n",
			flag.CommandLine,
			m)
	}
	ctx = WithUsage(ctx, flag.Usage)
	if err := flag.CommandLine.Parse(os.Args[1:]); err == flag.ErrHelp {
		return
	} else if err != nil {
		os.Exit(2)
	}
	if *timeout != 0 {
		t, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		ctx = t
	}
	ctx, args := Preempt(ctx, flag.Args())
	defer recovery()
	if err := m.run(ctx, args...); err != nil {
		stop()
		Fatal(err)
	}
}

func (m Selection) run(ctx context.Context, args ...string) error {
	if Setup != nil && len(Preemption(ctx)) == 0 && len(args) > 0 {
		cleanup, err := Setup(ctx)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
	}
	return m.Select(ctx, args...)
}

func (m Selection) Select(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		switch Preemption(ctx) {
		case "":
			if f, found := m[""]; found {
				return f(ctx)
			}
			return ErrorfWith(ctx, "missing COMMAND")
		case "complete":
			m.complete(ctx)
		case "help":
			m.usage(ctx)
		}
		return nil
	}
	if f, found := m[args[0]]; found {
		return f(WithPath(ctx, args[0]), args[1:]...)
	}
	switch Preemption(ctx) {
	case "":
		return ErrorfWith(ctx, "%s: command not found", args[0])
	case "complete":
		m.complete(ctx, args...)
	case "help":
		m.usage(ctx)
	}
	return nil
}

func (m Selection) complete(ctx context.Context, args ...string) {
	o := OutputOf(ctx)
	for _, s := range CompleteStrings(m.Keys(), args) {
		o.Println(s)
	}
}

func (m Selection) usage(ctx context.Context) {
	if usage := UsageOf(ctx); usage != nil {
		usage()
	} else {
		Usage(ctx, "COMMAND [ARG]...\n", m)
	}
}

func LastArg(args []string) (s string) {
	if len(args) > 0 {
		s = args[len(args)-1]
	}
	return
}

// CompleteStrings returns the members of l prefixed by the last arg.
func CompleteStrings(l []string, args []string) (c []string) {
	arg := LastArg(args)
	for _, s := range l {
		if len(s) == 0 {
			continue
		}
		if len(arg) == 0 || strings.HasPrefix(s, arg) {
			c = append(c, s)
		}
	}
	return
}

func recovery() {
	r := recover()
	if r == nil {
		return
	}
	sb := new(strings.Builder)
	fmt.Fprintln(sb, r)
	pcs := make([]uintptr, 64)
	if n := runtime.Callers(2, pcs); n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			f, more := frames.Next()
			if len(f.Function) == 0 {
				break
			}
			if !strings.Contains(f.File, "runtime/") {
				fmt.Fprint(sb, "    ", f.Function, "()\n")
				fmt.Fprint(sb, "        ", f.File, ":", f.Line, "\n")
			}
			if !more {
				break
			}
		}
	}
	Fatal(sb)
}
