// Copyright © 2018-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

/*
Package dbg provides the stylized trace printer used by drivers.

	var Trace = dbg.NoOp
	...
	Trace.Logf("tx_index %d", i)

Nothing is printed with the NoOp style, no args, or a nil args[0]. Both Log
and Logf return args[0] if it's an error so that,

	return Trace.Log(err)

Tests may select another style,

	func TestMain(m *testing.M) {
		flag.Parse()
		if testing.Verbose() {
			Trace = dbg.FileLine
		}
		os.Exit(m.Run())
	}
*/
package dbg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
)

type Style int

const (
	NoOp     Style = iota
	Plain          // TEXT
	FileLine       // FILE.go:LINE: TEXT
	Func           // PACKAGE.FUNC() TEXT
)

var writer atomic.Value

// Writer atomically replaces the os.Stdout default.
func Writer(w io.Writer) {
	writer.Store(&w)
}

func (style Style) Log(args ...interface{}) error {
	return style.log("", args)
}

func (style Style) Logf(format string, args ...interface{}) error {
	return style.log(format, args)
}

func (style Style) String() string {
	switch style {
	case NoOp:
		return "NoOp"
	case Plain:
		return "Plain"
	case FileLine:
		return "FileLine"
	case Func:
		return "Func"
	}
	return fmt.Sprint(int(style))
}

func (style Style) log(format string, args []interface{}) error {
	const skip = 2
	if len(args) == 0 || args[0] == nil {
		return nil
	}
	err, _ := args[0].(error)
	if style == NoOp {
		return err
	}
	buf := new(bytes.Buffer)
	if style > Plain {
		if pc, file, line, ok := runtime.Caller(skip); !ok {
			fmt.Fprintf(buf, "pc[%#x] ", pc)
		} else if style == FileLine {
			fmt.Fprint(buf, filepath.Base(file), ":", line, ": ")
		} else {
			name := runtime.FuncForPC(pc).Name()
			if i := strings.LastIndexByte(name, '/'); i >= 0 {
				name = name[i+1:]
			}
			fmt.Fprint(buf, name, "() ")
		}
	}
	if len(format) > 0 {
		fmt.Fprintf(buf, format, args...)
		fmt.Fprintln(buf)
	} else {
		fmt.Fprintln(buf, args...)
	}
	w := io.Writer(os.Stdout)
	if p, ok := writer.Load().(*io.Writer); ok && *p != nil {
		w = *p
	}
	w.Write(buf.Bytes())
	return err
}
