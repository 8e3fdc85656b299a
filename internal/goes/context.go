// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
)

var (
	outputMark, pathMark, usageMark int

	outputKey = &outputMark
	pathKey   = &pathMark
	usageKey  = &usageMark
)

// Output is a context bound writer that drops everything once the context
// is done.
type Output struct {
	context.Context
	w io.Writer
}

func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return Output{ctx, w}
}

func OutputOf(ctx context.Context) Output {
	if v := ctx.Value(outputKey); v != nil {
		return v.(Output)
	}
	return Output{ctx, nil}
}

func (o Output) Print(args ...interface{}) {
	if o.Err() == nil && o.w != nil {
		fmt.Fprint(o.w, args...)
	}
}

func (o Output) Printf(format string, args ...interface{}) {
	if o.Err() == nil && o.w != nil {
		fmt.Fprintf(o.w, format, args...)
	}
}

func (o Output) Println(args ...interface{}) {
	if o.Err() == nil && o.w != nil {
		fmt.Fprintln(o.w, args...)
	}
}

func (o Output) Write(data []byte) (int, error) {
	if err := o.Err(); err != nil {
		return 0, err
	}
	if o.w == nil {
		return len(data), nil
	}
	return o.w.Write(data)
}

func (o Output) Value(k interface{}) interface{} {
	if k == outputKey {
		return o
	}
	return o.Context.Value(k)
}

type path struct {
	context.Context
	name string
}

// WithPath appends a command name to the context.
func WithPath(ctx context.Context, name string) context.Context {
	return path{ctx, name}
}

// PathOf returns the names appended to the context, first to last.
func PathOf(ctx context.Context) []string {
	var l []string
	for v := ctx.Value(pathKey); v != nil; v = ctx.Value(pathKey) {
		p := v.(path)
		l = append([]string{p.name}, l...)
		ctx = p.Context
	}
	return l
}

func (p path) Value(k interface{}) interface{} {
	if k == pathKey {
		return p
	}
	return p.Context.Value(k)
}

var preemptive = map[string]bool{
	"complete": true,
	"help":     true,
}

// Preemption returns "complete" or "help" if the context path is
// preempted by either; otherwise, this returns an empty string.
func Preemption(ctx context.Context) string {
	path := PathOf(ctx)
	if len(path) > 1 && preemptive[path[1]] {
		return path[1]
	}
	return ""
}

// Preempt moves leading "complete" and "help" arguments to the context.
func Preempt(ctx context.Context, args []string) (context.Context, []string) {
	for len(args) > 0 && preemptive[args[0]] {
		ctx = WithPath(ctx, args[0])
		args = args[1:]
	}
	return ctx, args
}

// Usage prints,
//
//	usage: PATH ARGS...
//
// where PATH is the space separated names of the context path without any
// "help" preemption. The ARGS are printed without separation. A
// *flag.FlagSet arg is printed with its defaults and a Selection arg with
// its sorted keys.
func Usage(ctx context.Context, args ...interface{}) {
	o := OutputOf(ctx)
	o.Print("usage:")
	for i, s := range PathOf(ctx) {
		if i == 1 && s == "help" {
			continue
		}
		o.Print(" ", s)
	}
	end := "\n"
	if len(args) > 0 {
		o.Print(" ")
	}
	for _, v := range args {
		switch t := v.(type) {
		case *flag.FlagSet:
			end = ""
			t.SetOutput(o)
			t.PrintDefaults()
		case Selection:
			end = ""
			for _, s := range t.Keys() {
				if len(s) > 0 {
					o.Println(" ", s)
				}
			}
		default:
			o.Print(v)
			end = ""
		}
	}
	o.Print(end)
}

func UsageOf(ctx context.Context) func() {
	if v := ctx.Value(usageKey); v != nil {
		return v.(func())
	}
	return nil
}

func WithUsage(ctx context.Context, f func()) context.Context {
	return context.WithValue(ctx, usageKey, f)
}

// ErrorfWith prefaces the formatted error with the context path.
func ErrorfWith(ctx context.Context, format string, args ...interface{}) error {
	return fmt.Errorf(strings.Join(PathOf(ctx), " ")+": "+format, args...)
}
